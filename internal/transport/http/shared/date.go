package shared

import "time"

const dateOnly = "2006-01-02"

// ParseDate reads the two date shapes the API and rule documents use, full
// RFC3339 timestamps or bare YYYY-MM-DD days.
func ParseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateOnly, value)
}
