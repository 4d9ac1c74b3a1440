package transition

import (
	"time"

	"github.com/saaga0h/candela/internal/easing"
)

// State is either Idle or InTransition
type State interface {
	isState()
}

// Idle holds a settled temperature. Since marks when the engine last
// settled or was reset, and is what gets persisted as the start timestamp.
type Idle struct {
	Temperature int
	Since       time.Time
}

// InTransition is an interpolation in flight from StartTemp to TargetTemp.
// StartedAt carries both the wall clock (persisted) and Go's monotonic
// reading (used for elapsed time inside this process).
type InTransition struct {
	StartTemp  int
	TargetTemp int
	Current    int
	StartedAt  time.Time
}

func (Idle) isState()         {}
func (InTransition) isState() {}

// Clock returns the current time. time.Now in production.
type Clock func() time.Time

// Engine advances the display temperature toward a target over a fixed
// duration. It is owned by a single loop and is not safe for concurrent use.
type Engine struct {
	duration time.Duration
	curve    easing.Curve
	now      Clock
	state    State
}

// NewEngine creates an idle engine at initial. A nil clock uses time.Now.
func NewEngine(duration time.Duration, curve easing.Curve, initial int, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if curve == nil {
		curve = easing.Parse(easing.Linear)
	}
	if duration < 0 {
		duration = 0
	}

	return &Engine{
		duration: duration,
		curve:    curve,
		now:      clock,
		state:    Idle{Temperature: initial, Since: clock()},
	}
}

// Update moves toward target, detecting a changed target itself.
// A zero duration applies the target instantly.
func (e *Engine) Update(target int) {
	now := e.now()

	if e.duration == 0 {
		e.state = Idle{Temperature: target, Since: now}
		return
	}

	current := e.Current()
	if current == target {
		e.state = Idle{Temperature: target, Since: e.StartedAt()}
		return
	}

	tr, ok := e.state.(InTransition)
	if !ok || tr.TargetTemp != target {
		tr = InTransition{
			StartTemp:  current,
			TargetTemp: target,
			Current:    current,
			StartedAt:  now,
		}
	}

	elapsed := now.Sub(tr.StartedAt)
	if elapsed >= e.duration {
		e.state = Idle{Temperature: target, Since: tr.StartedAt}
		return
	}

	tr.Current = Interpolate(tr.StartTemp, tr.TargetTemp, elapsed, e.duration, e.curve)
	e.state = tr
}

// AlignWithSchedule sets the engine to the point elapsed into an
// authoritative window from start to target, regardless of prior history.
func (e *Engine) AlignWithSchedule(start, target int, elapsed time.Duration) {
	now := e.now()

	if e.duration == 0 {
		e.state = Idle{Temperature: target, Since: now}
		return
	}

	clampedElapsed := max(0, min(elapsed, e.duration))
	startedAt := now.Add(-clampedElapsed)

	if clampedElapsed == e.duration {
		e.state = Idle{Temperature: target, Since: startedAt}
		return
	}

	e.state = InTransition{
		StartTemp:  start,
		TargetTemp: target,
		Current:    Interpolate(start, target, clampedElapsed, e.duration, e.curve),
		StartedAt:  startedAt,
	}
}

// Progress is raw time progress of the current transition in [0,1].
// It is 1 when idle and ignores easing.
func (e *Engine) Progress() float64 {
	tr, ok := e.state.(InTransition)
	if !ok || e.duration == 0 {
		return 1.0
	}

	elapsed := e.now().Sub(tr.StartedAt)
	if elapsed >= e.duration {
		return 1.0
	}
	if elapsed <= 0 {
		return 0.0
	}
	return elapsed.Seconds() / e.duration.Seconds()
}

// State returns the current state value
func (e *Engine) State() State {
	return e.state
}

// InTransition reports whether an interpolation is in flight
func (e *Engine) InTransition() bool {
	_, ok := e.state.(InTransition)
	return ok
}

// Current returns the temperature the display should show now
func (e *Engine) Current() int {
	switch s := e.state.(type) {
	case InTransition:
		return s.Current
	case Idle:
		return s.Temperature
	}
	return 0
}

// Target returns the temperature the engine is heading to
func (e *Engine) Target() int {
	switch s := e.state.(type) {
	case InTransition:
		return s.TargetTemp
	case Idle:
		return s.Temperature
	}
	return 0
}

// StartTemperature returns the interpolation start, or the settled value when idle
func (e *Engine) StartTemperature() int {
	switch s := e.state.(type) {
	case InTransition:
		return s.StartTemp
	case Idle:
		return s.Temperature
	}
	return 0
}

// StartedAt returns when the current transition started, or when the engine went idle
func (e *Engine) StartedAt() time.Time {
	switch s := e.state.(type) {
	case InTransition:
		return s.StartedAt
	case Idle:
		return s.Since
	}
	return time.Time{}
}

// Duration returns the configured transition length
func (e *Engine) Duration() time.Duration {
	return e.duration
}
