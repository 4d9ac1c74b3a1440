package schedule

import "time"

// Phase is one of the four daily states
type Phase int

const (
	Day Phase = iota
	TransitioningToNight
	Night
	TransitioningToDay
)

// String returns the status-file form of the phase
func (p Phase) String() string {
	switch p {
	case Day:
		return "day"
	case TransitioningToNight:
		return "transitioning_to_night"
	case Night:
		return "night"
	case TransitioningToDay:
		return "transitioning_to_day"
	}
	return "unknown"
}

// IsTransitioning reports whether the phase has an active window
func (p Phase) IsTransitioning() bool {
	return p == TransitioningToNight || p == TransitioningToDay
}

// IsDaytime reports whether the phase targets the day temperature
func (p Phase) IsDaytime() bool {
	return p == Day || p == TransitioningToDay
}

// Window is an active interpolation interval [Start, End)
type Window struct {
	Start      time.Time
	End        time.Time
	StartTemp  int
	TargetTemp int
}

// Elapsed returns how far t is into the window
func (w Window) Elapsed(t time.Time) time.Duration {
	return t.Sub(w.Start)
}

// Snapshot is one evaluation of the schedule at a given instant
type Snapshot struct {
	At     time.Time
	Phase  Phase
	Target int
	// Window is nil outside a transition
	Window *Window
	// Next is the start of the next window; zero while transitioning
	Next time.Time
}
