package visitor

import (
	"fmt"
	"strings"
)

// ValidationError reports the required check-in fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// PhotoProcessingError wraps a failure to decode or downscale a check-in
// photo. The rest of the form data is unaffected; the caller may retry
// without the photo.
type PhotoProcessingError struct {
	Err error
}

func (e *PhotoProcessingError) Error() string {
	return fmt.Sprintf("photo could not be processed: %v", e.Err)
}

func (e *PhotoProcessingError) Unwrap() error {
	return e.Err
}
