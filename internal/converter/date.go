package converter

import "time"

const DateLayout = "2006-01-02"

// FormatDate renders a stored calendar date; zero dates render empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
