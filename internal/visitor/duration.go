package visitor

import (
	"fmt"
	"time"
)

// NotAvailable is rendered when a duration cannot be computed: a timestamp
// is missing, unparseable, or the checkout precedes the check-in.
const NotAvailable = "-"

// Duration returns the stay length between two RFC 3339 timestamps. ok is
// false when either timestamp is absent or unparseable, or when out < in.
func Duration(inTime, outTime string) (time.Duration, bool) {
	if inTime == "" || outTime == "" {
		return 0, false
	}
	in, err := time.Parse(time.RFC3339, inTime)
	if err != nil {
		return 0, false
	}
	out, err := time.Parse(time.RFC3339, outTime)
	if err != nil {
		return 0, false
	}
	if out.Before(in) {
		return 0, false
	}
	return out.Sub(in), true
}

// FormatDuration renders a stay as "2 hours 30 minutes", with sub-minute
// stays shown as "< 1 minute".
func FormatDuration(inTime, outTime string) string {
	d, ok := Duration(inTime, outTime)
	if !ok {
		return NotAvailable
	}

	minutes := int(d.Minutes())
	if minutes < 1 {
		return "< 1 minute"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d %s", minutes, plural("minute", minutes))
	}

	hours := minutes / 60
	rem := minutes % 60
	s := fmt.Sprintf("%d %s", hours, plural("hour", hours))
	if rem > 0 {
		s += fmt.Sprintf(" %d %s", rem, plural("minute", rem))
	}
	return s
}

// ShortDuration renders a stay as "2h 30m" for spreadsheet exports, or an
// empty cell when not computable.
func ShortDuration(inTime, outTime string) string {
	d, ok := Duration(inTime, outTime)
	if !ok {
		return ""
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
