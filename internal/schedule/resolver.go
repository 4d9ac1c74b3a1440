package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/saaga0h/candela/pkg/config"
)

var (
	// ErrInvalidSchedule is returned when wakeup or bedtime is not HH:MM
	ErrInvalidSchedule = errors.New("invalid schedule time")
	// ErrInvalidCoordinates is returned for an impossible latitude/longitude in auto mode
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// clockTime is a local time of day
type clockTime struct {
	hour, minute int
}

func parseClock(label, value string) (clockTime, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return clockTime{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidSchedule, label, value, err)
	}
	return clockTime{hour: t.Hour(), minute: t.Minute()}, nil
}

func (c clockTime) on(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, day.Location())
}

// event is the start of a transition window
type event struct {
	start time.Time
	toDay bool
}

// Resolver maps an instant to a phase, target temperature and window.
// It holds no mutable state and recomputes everything on each call.
type Resolver struct {
	mode      config.Mode
	lat, lon  float64
	wakeup    clockTime
	bedtime   clockTime
	duration  time.Duration
	dayTemp   int
	nightTemp int
	solar     SolarCalculator
}

// New validates the schedule part of cfg and builds a Resolver.
// A nil solar calculator uses Suncalc.
func New(cfg *config.Config, solar SolarCalculator) (*Resolver, error) {
	wakeup, err := parseClock("wakeup", cfg.Schedule.Wakeup)
	if err != nil {
		return nil, err
	}
	bedtime, err := parseClock("bedtime", cfg.Schedule.Bedtime)
	if err != nil {
		return nil, err
	}

	lat, lon := cfg.Location.Latitude, cfg.Location.Longitude
	if cfg.Mode == config.ModeAuto && !validCoordinates(lat, lon) {
		return nil, fmt.Errorf("%w: latitude=%v longitude=%v", ErrInvalidCoordinates, lat, lon)
	}

	if solar == nil {
		solar = Suncalc{}
	}

	return &Resolver{
		mode:      cfg.Mode,
		lat:       lat,
		lon:       lon,
		wakeup:    wakeup,
		bedtime:   bedtime,
		duration:  max(0, cfg.TransitionDuration()),
		dayTemp:   cfg.Temperature.Day,
		nightTemp: cfg.Temperature.Night,
		solar:     solar,
	}, nil
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// PhaseAt classifies t. Windows are half-open, so an instant exactly on
// a boundary belongs to the later state.
func (r *Resolver) PhaseAt(t time.Time) Phase {
	ev, ok := r.latestEvent(t)
	if !ok {
		return r.fallbackPhase(t)
	}

	inWindow := t.Before(ev.start.Add(r.duration))
	switch {
	case ev.toDay && inWindow:
		return TransitioningToDay
	case ev.toDay:
		return Day
	case inWindow:
		return TransitioningToNight
	default:
		return Night
	}
}

// TargetTemperatureAt returns the day temperature for Day and
// TransitioningToDay, the night temperature otherwise
func (r *Resolver) TargetTemperatureAt(t time.Time) int {
	return r.targetFor(r.PhaseAt(t))
}

// TransitionWindowAt returns the active window at t, or nil outside a
// transition and whenever the duration is zero
func (r *Resolver) TransitionWindowAt(t time.Time) *Window {
	if r.duration == 0 {
		return nil
	}

	ev, ok := r.latestEvent(t)
	if !ok {
		return nil
	}

	end := ev.start.Add(r.duration)
	if !t.Before(end) {
		return nil
	}

	w := &Window{Start: ev.start, End: end}
	if ev.toDay {
		w.StartTemp, w.TargetTemp = r.nightTemp, r.dayTemp
	} else {
		w.StartTemp, w.TargetTemp = r.dayTemp, r.nightTemp
	}
	return w
}

// NextTransitionStartAt returns the start of the next window after t
// during Day or Night. It returns false while a transition is active,
// since the window's own end is the next relevant instant then.
func (r *Resolver) NextTransitionStartAt(t time.Time) (time.Time, bool) {
	if r.PhaseAt(t).IsTransitioning() {
		return time.Time{}, false
	}
	return r.nextEvent(t)
}

// Describe evaluates phase, target, window and next boundary at t
func (r *Resolver) Describe(t time.Time) Snapshot {
	phase := r.PhaseAt(t)
	snap := Snapshot{
		At:     t,
		Phase:  phase,
		Target: r.targetFor(phase),
		Window: r.TransitionWindowAt(t),
	}
	if !phase.IsTransitioning() {
		if next, ok := r.nextEvent(t); ok {
			snap.Next = next
		}
	}
	return snap
}

func (r *Resolver) targetFor(p Phase) int {
	if p.IsDaytime() {
		return r.dayTemp
	}
	return r.nightTemp
}

// fallbackPhase handles days without any sunrise or sunset nearby
func (r *Resolver) fallbackPhase(t time.Time) Phase {
	if r.solar.SunAboveHorizon(t, r.lat, r.lon) {
		return Day
	}
	return Night
}

// latestEvent finds the most recent window start at or before t. Checking
// the neighbouring dates covers windows that cross midnight. A polar date
// has no events of its own, and an earlier date's sunset must not classify
// it, so nothing is returned and the caller uses the sun's altitude.
func (r *Resolver) latestEvent(t time.Time) (event, bool) {
	if r.mode == config.ModeAuto && len(r.eventsOn(dateOffset(t, 0))) == 0 {
		return event{}, false
	}

	var best event
	found := false
	for offset := -1; offset <= 1; offset++ {
		for _, ev := range r.eventsOn(dateOffset(t, offset)) {
			if ev.start.After(t) {
				continue
			}
			if !found || ev.start.After(best.start) {
				best, found = ev, true
			}
		}
	}
	return best, found
}

// nextEvent finds the earliest window start strictly after t
func (r *Resolver) nextEvent(t time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for offset := 0; offset <= 2; offset++ {
		for _, ev := range r.eventsOn(dateOffset(t, offset)) {
			if !ev.start.After(t) {
				continue
			}
			if !found || ev.start.Before(best) {
				best, found = ev.start, true
			}
		}
	}
	return best, found
}

// eventsOn returns the window starts belonging to the local date of day
func (r *Resolver) eventsOn(day time.Time) []event {
	if r.mode == config.ModeFixed {
		return []event{
			{start: r.wakeup.on(day), toDay: true},
			{start: r.bedtime.on(day).Add(-r.duration), toDay: false},
		}
	}

	sunrise, sunset, ok := r.solar.SunTimes(day, r.lat, r.lon)
	if !ok {
		return nil
	}
	return []event{
		{start: sunrise, toDay: true},
		{start: sunset, toDay: false},
	}
}

// dateOffset returns noon of the local date offset days from t
func dateOffset(t time.Time, days int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, 12, 0, 0, 0, t.Location())
}
