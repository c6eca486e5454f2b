package utils

import (
	"fmt"
	"math"
)

// FormatDistance renders meters as "850 m" below one kilometer and
// "12.3 km" above.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%d m", int(math.Round(meters)))
}

// FormatDuration renders seconds as "25 min", or "1h 5m" from one hour up.
func FormatDuration(seconds float64) string {
	minutes := int(math.Round(seconds / 60))
	if minutes >= 60 {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%d min", minutes)
}
