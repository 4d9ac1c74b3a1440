package transition

import (
	"math"
	"time"

	"github.com/saaga0h/candela/internal/easing"
)

// MaxTemperature is the largest temperature the display utility accepts
const MaxTemperature = math.MaxUint16

// Interpolate returns the temperature reached after elapsed of a transition
// from start to target lasting duration. The engine and resume from
// persisted state both use it.
func Interpolate(start, target int, elapsed, duration time.Duration, curve easing.Curve) int {
	if duration <= 0 || elapsed >= duration {
		return clampTemperature(target, target, target)
	}
	if elapsed < 0 {
		elapsed = 0
	}

	progress := elapsed.Seconds() / duration.Seconds()
	eased := curve(progress)
	value := start + int(math.Round(eased*float64(target-start)))

	return clampTemperature(value, start, target)
}

func clampTemperature(value, a, b int) int {
	lo, hi := min(a, b), max(a, b)
	value = max(lo, min(hi, value))
	return max(0, min(MaxTemperature, value))
}
