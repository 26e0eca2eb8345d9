// Package util provides small formatting helpers for tagreload.
package util

import (
	"fmt"
	"strings"
	"time"
)

// timeUnit is one component of a formatted duration.
type timeUnit struct {
	value    int64
	singular string
	plural   string
}

// FormatDuration converts a time.Duration into a readable string such as
// "1 hour, 2 minutes, 3 seconds". A zero duration yields "0 seconds".
func FormatDuration(duration time.Duration) string {
	const (
		minutesPerHour   = 60
		secondsPerMinute = 60
	)

	units := []timeUnit{
		{int64(duration.Hours()), "hour", "hours"},
		{int64(duration.Minutes()) % minutesPerHour, "minute", "minutes"},
		{int64(duration.Seconds()) % secondsPerMinute, "second", "seconds"},
	}

	parts := make([]string, 0, len(units))

	for i, unit := range units {
		parts = append(
			parts,
			FormatTimeUnit(unit.value, unit.singular, unit.plural, i == len(units)-1 && len(FilterEmpty(parts)) == 0),
		)
	}

	return strings.Join(FilterEmpty(parts), ", ")
}

// FormatTimeUnit formats a single time unit with singular or plural grammar.
// Zero values are skipped unless forceInclude is set.
func FormatTimeUnit(value int64, singular, plural string, forceInclude bool) string {
	switch {
	case value == 1:
		return "1 " + singular
	case value > 1 || forceInclude:
		return fmt.Sprintf("%d %s", value, plural)
	default:
		return ""
	}
}

// FilterEmpty removes empty strings from a slice.
func FilterEmpty(parts []string) []string {
	var filtered []string

	for _, part := range parts {
		if part != "" {
			filtered = append(filtered, part)
		}
	}

	return filtered
}

// NormalizeContainerName trims the leading "/" the daemon puts on container names.
func NormalizeContainerName(name string) string {
	return strings.TrimPrefix(name, "/")
}
