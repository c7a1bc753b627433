package timeutil

import (
	"fmt"
	"math"
	"strings"
)

// FormatTimestamp formats seconds as MM:SS below one hour and H:MM:SS from one hour on
// (e.g. 00:12, 59:59, 1:02:03). Fractions are floored.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalSeconds := int(math.Floor(seconds))
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// ParseTimeToSeconds parses a time string in HH:MM:SS, MM:SS, or raw seconds format.
// Uses colon count: 2 colons = H:M:S, 1 colon = M:S, 0 colons = raw seconds.
func ParseTimeToSeconds(timeStr string) (float64, error) {
	colons := strings.Count(timeStr, ":")

	switch colons {
	case 2:
		var hours, minutes, seconds int
		if n, err := fmt.Sscanf(timeStr, "%d:%d:%d", &hours, &minutes, &seconds); n == 3 && err == nil {
			return float64(hours*3600 + minutes*60 + seconds), nil
		}
	case 1:
		var minutes, seconds int
		if n, err := fmt.Sscanf(timeStr, "%d:%d", &minutes, &seconds); n == 2 && err == nil {
			return float64(minutes*60 + seconds), nil
		}
	case 0:
		var secs float64
		if n, err := fmt.Sscanf(timeStr, "%f", &secs); n == 1 && err == nil {
			return secs, nil
		}
	}

	return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
}

// ParseISODuration parses the PT#H#M#S durations returned by the YouTube Data API.
// Unparseable input yields 0.
func ParseISODuration(iso string) int {
	if !strings.HasPrefix(iso, "PT") {
		return 0
	}
	rest := iso[2:]
	total := 0
	num := 0
	seen := false
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			seen = true
		case r == 'H' && seen:
			total += num * 3600
			num, seen = 0, false
		case r == 'M' && seen:
			total += num * 60
			num, seen = 0, false
		case r == 'S' && seen:
			total += num
			num, seen = 0, false
		default:
			return 0
		}
	}
	if seen {
		return 0
	}
	return total
}
