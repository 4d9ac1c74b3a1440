package schedule

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// horizonAltitude is the sun altitude in radians at which suncalc places
// sunrise and sunset, accounting for refraction and the solar disc
const horizonAltitude = -0.833 * math.Pi / 180

// SolarCalculator provides sunrise and sunset for a local calendar date
type SolarCalculator interface {
	// SunTimes returns sunrise and sunset on the date of day in day's location.
	// ok is false when the sun does not rise or set that day.
	SunTimes(day time.Time, lat, lon float64) (sunrise, sunset time.Time, ok bool)

	// SunAboveHorizon reports whether the sun is up at t
	SunAboveHorizon(t time.Time, lat, lon float64) bool
}

// Suncalc is the SolarCalculator backed by github.com/sixdouglas/suncalc
type Suncalc struct{}

// SunTimes implements SolarCalculator
func (Suncalc) SunTimes(day time.Time, lat, lon float64) (time.Time, time.Time, bool) {
	loc := day.Location()
	noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc)

	times := suncalc.GetTimes(noon, lat, lon)
	sunrise := times[suncalc.Sunrise].Value
	sunset := times[suncalc.Sunset].Value

	// Polar day and night produce missing or nonsensical instants
	if !plausible(sunrise, noon) || !plausible(sunset, noon) || !sunrise.Before(sunset) {
		return time.Time{}, time.Time{}, false
	}

	return sunrise.In(loc), sunset.In(loc), true
}

// SunAboveHorizon implements SolarCalculator
func (Suncalc) SunAboveHorizon(t time.Time, lat, lon float64) bool {
	position := suncalc.GetPosition(t, lat, lon)
	return aboveHorizon(position.Altitude)
}

func aboveHorizon(altitude float64) bool {
	return altitude > horizonAltitude
}

func plausible(event, noon time.Time) bool {
	if event.IsZero() {
		return false
	}
	offset := event.Sub(noon)
	return offset > -24*time.Hour && offset < 24*time.Hour
}
