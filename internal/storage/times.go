package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesOfDay parses a "HH:MM" time-of-day string into minutes since
// midnight. Times are stored as plain strings because the plant records
// wall-clock readings, not instants.
func MinutesOfDay(t string) (int, error) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad time of day %q", t)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad time of day %q", t)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad time of day %q", t)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", t)
	}
	return h*60 + m, nil
}
