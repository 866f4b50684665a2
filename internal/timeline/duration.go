package timeline

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a span in workshop notation, largest unit
// first: "2T 3h 15m" (T for Tage), "3h 15m", "15m", "42s". Trailing
// zero sub-units are dropped, so exactly two hours reads "2h".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	switch {
	case days > 0:
		return joinUnits(unit{days, "T"}, unit{hours, "h"}, unit{minutes, "m"})
	case hours > 0:
		return joinUnits(unit{hours, "h"}, unit{minutes, "m"})
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

type unit struct {
	value  int
	suffix string
}

func joinUnits(units ...unit) string {
	// drop trailing zero components, keep interior ones
	last := len(units)
	for last > 1 && units[last-1].value == 0 {
		last--
	}

	parts := make([]string, 0, last)
	for _, u := range units[:last] {
		parts = append(parts, fmt.Sprintf("%d%s", u.value, u.suffix))
	}
	return strings.Join(parts, " ")
}
