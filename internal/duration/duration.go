// Package duration parses the retention periods used by vacuum.
//
// Operators think of retention in days, weeks or months ("keep retired
// stories for 4w"), which time.ParseDuration cannot express.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(\d+)([dwm])$`)

const day = 24 * time.Hour

// Parse parses Nd (days), Nw (weeks) or Nm (months of 30 days).
func Parse(s string) (time.Duration, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration format: %s (use 7d, 4w, or 3m)", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}

	switch m[2] {
	case "w":
		return time.Duration(n) * 7 * day, nil
	case "m":
		return time.Duration(n) * 30 * day, nil
	default:
		return time.Duration(n) * day, nil
	}
}
