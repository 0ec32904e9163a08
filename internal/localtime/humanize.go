package localtime

import (
	"fmt"
	"math"
	"time"
)

// TimeAgo returns a coarse age string for t relative to now,
// e.g. "10 sec old", "5 min old", "2 hr old", "3 days old".
func TimeAgo(t, now time.Time) string {
	seconds := now.Sub(t).Seconds()
	if seconds < 0 {
		seconds = 0
	}
	days := int(seconds / 86400)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d sec old", int(seconds))
	case seconds < 3600:
		return fmt.Sprintf("%d min old", int(seconds/60))
	case seconds < 86400:
		return fmt.Sprintf("%d hr old", int(seconds/3600))
	case seconds < 2592000: // ~30 days
		return fmt.Sprintf("%d days old", days)
	case seconds < 31536000: // ~365 days
		return fmt.Sprintf("%d mo old", days/30)
	default:
		return fmt.Sprintf("%d yr old", days/365)
	}
}

// DaysUntil returns whole days from now until t. Negative means late.
func DaysUntil(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

// DaysSince returns the age of t in whole days; future instants count as 0.
func DaysSince(t, now time.Time) int {
	d := int(math.Floor(now.Sub(t).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}
