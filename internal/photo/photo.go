// Package photo downscales inline-encoded check-in photos so a single large
// image cannot blow the storage budget for the whole visitor document.
package photo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// Options bound the stored photo size.
type Options struct {
	// MaxEncodedBytes is the data-URL length above which a photo is
	// downscaled before storage.
	MaxEncodedBytes int
	MaxWidth        int
	MaxHeight       int
	// MinDimension keeps aggressive downscales from collapsing a side to
	// nothing.
	MinDimension int
	JPEGQuality  int
}

// DefaultOptions mirrors the thresholds the check-in flow has always used.
func DefaultOptions() Options {
	return Options{
		MaxEncodedBytes: 500_000,
		MaxWidth:        80,
		MaxHeight:       60,
		MinDimension:    20,
		JPEGQuality:     25,
	}
}

// NeedsDownscale reports whether the encoded photo exceeds the size budget.
func (o Options) NeedsDownscale(dataURL string) bool {
	return o.MaxEncodedBytes > 0 && len(dataURL) > o.MaxEncodedBytes
}

// Downscale re-encodes a base64 data URL as a small lossy JPEG within the
// configured bounds. The aspect ratio is preserved.
func Downscale(dataURL string, opts Options) (string, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > opts.MaxWidth || h > opts.MaxHeight {
		scale := min(float64(opts.MaxWidth)/float64(w), float64(opts.MaxHeight)/float64(h))
		w = max(opts.MinDimension, int(float64(w)*scale))
		h = max(opts.MinDimension, int(float64(h)*scale))
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to re-encode image: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeDataURL strips a "data:<mime>;base64," prefix and decodes the
// payload. Bare base64 without a prefix is accepted too.
func decodeDataURL(dataURL string) ([]byte, error) {
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		idx := strings.Index(dataURL, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		if !strings.Contains(dataURL[:idx], ";base64") {
			return nil, fmt.Errorf("unsupported data URL encoding")
		}
		payload = dataURL[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return raw, nil
}
