package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DateOnly reduces a date or timestamp string to the calendar day written in
// it ("2025-06-10T00:00:00+02:00" -> "2025-06-10"). The zone offset is never
// applied, so a browser east of UTC cannot shift the day.
func DateOnly(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		head := strings.ReplaceAll(s[:10], "/", "-")
		if _, err := time.Parse(layoutDate, head); err == nil {
			if len(s) == 10 || s[10] == 'T' || s[10] == ' ' {
				return head, nil
			}
		}
	}
	return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

// FormatDate formats time to YYYY-MM-DD in its own location.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}

// TimeHM trims "08:30:00" to "08:30".
func TimeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}
