package model

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ClockMinutes parses a 24h "HH:MM" wall-clock value into minutes after
// midnight.
func ClockMinutes(hhmm string) (int, error) {
	m := clockRegex.FindStringSubmatch(hhmm)
	if m == nil {
		return 0, fmt.Errorf("invalid clock value %q, want HH:MM", hhmm)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, nil
}

// IsClock reports whether s is a valid "HH:MM" value.
func IsClock(s string) bool {
	return clockRegex.MatchString(s)
}
