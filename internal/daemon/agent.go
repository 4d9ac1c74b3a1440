package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saaga0h/candela/internal/display"
	"github.com/saaga0h/candela/internal/easing"
	"github.com/saaga0h/candela/internal/schedule"
	"github.com/saaga0h/candela/internal/state"
	"github.com/saaga0h/candela/internal/status"
	"github.com/saaga0h/candela/internal/transition"
	"github.com/saaga0h/candela/pkg/config"
)

// maxStableSleep caps how long the loop sleeps during Day or Night
const maxStableSleep = time.Hour

// Agent is the driving loop around the resolver and transition engine.
// All state is owned by the goroutine calling Run.
type Agent struct {
	cfg      *config.Config
	resolver *schedule.Resolver
	applier  display.Applier
	filter   *display.UpdateFilter
	logger   *slog.Logger
	curve    easing.Curve
	now      transition.Clock
	dryRun   bool
	instance string

	engine *transition.Engine
	ticks  int
}

// Option customises an Agent
type Option func(*Agent)

// WithClock replaces time.Now
func WithClock(clock transition.Clock) Option {
	return func(a *Agent) { a.now = clock }
}

// WithDryRun disables status and state file writes
func WithDryRun(dryRun bool) Option {
	return func(a *Agent) { a.dryRun = dryRun }
}

// NewAgent creates a new daemon agent
func NewAgent(cfg *config.Config, resolver *schedule.Resolver, applier display.Applier, logger *slog.Logger, opts ...Option) *Agent {
	a := &Agent{
		cfg:      cfg,
		resolver: resolver,
		applier:  applier,
		filter:   display.NewUpdateFilter(cfg.Daemon.OptimizeUpdates),
		logger:   logger,
		curve:    easing.Parse(cfg.Transition.Easing),
		now:      time.Now,
		instance: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Instance returns the ID of this daemon run
func (a *Agent) Instance() string {
	return a.instance
}

// Run seeds the engine, ticks until ctx is cancelled, then persists the
// transition state. A failure to persist is returned.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("Starting candela daemon",
		"instance", a.instance,
		"mode", a.cfg.Mode,
		"transition_minutes", a.cfg.Transition.DurationMinutes,
		"easing", a.cfg.Transition.Easing,
		"day_temp", a.cfg.Temperature.Day,
		"night_temp", a.cfg.Temperature.Night)

	a.Seed()

	for ctx.Err() == nil {
		snap := a.Tick(ctx)
		if !a.wait(ctx, a.sleepFor(snap)) {
			break
		}
	}

	a.logger.Info("Daemon stopping", "instance", a.instance)
	return a.Shutdown()
}

// Seed creates the engine, resuming from a fresh persisted record when
// there is one and starting at the scheduled target otherwise
func (a *Agent) Seed() {
	now := a.now()
	duration := a.cfg.TransitionDuration()
	durationSeconds := int64(duration / time.Second)

	initial := a.resolver.TargetTemperatureAt(now)

	if rec := state.Load(a.cfg.Daemon.StateFile); rec == nil {
		a.logger.Debug("No saved state", "path", a.cfg.Daemon.StateFile)
	} else if rec.Usable(now, durationSeconds) {
		initial = state.CalculateTemperature(rec, durationSeconds, a.curve)
		a.logger.Info("Resuming transition from saved state",
			"start_temp", rec.TransitionStartTemp,
			"target_temp", rec.TargetTemp,
			"elapsed_seconds", rec.ElapsedSeconds,
			"temperature", initial)
	} else {
		a.logger.Info("Saved state too old, calculating fresh",
			"age_seconds", rec.AgeSeconds(now))
	}

	a.engine = transition.NewEngine(duration, a.curve, initial, a.now)
}

// Tick advances the engine to the schedule at the current instant and
// applies the resulting temperature
func (a *Agent) Tick(ctx context.Context) schedule.Snapshot {
	if a.engine == nil {
		a.Seed()
	}

	now := a.now()
	snap := a.resolver.Describe(now)

	if w := snap.Window; w != nil {
		a.engine.AlignWithSchedule(w.StartTemp, w.TargetTemp, w.Elapsed(now))
	} else {
		a.engine.Update(snap.Target)
	}

	temp := a.engine.Current()
	target := a.engine.Target()
	progress := a.engine.Progress()

	a.logger.Info("Tick",
		"phase", snap.Phase.String(),
		"temp", temp,
		"target", target,
		"progress", fmt.Sprintf("%.2f", progress))

	if a.filter.ShouldApply(temp) {
		if err := a.applier.SetTemperature(ctx, temp); err != nil {
			a.logger.Error("Error setting temperature", "temperature", temp, "error", err)
		} else {
			a.filter.Record(temp)
			a.logger.Info("Set temperature", "temperature", temp)
		}
	}

	a.ticks++
	if a.ticks >= a.cfg.StatusEvery() {
		a.ticks = 0
		a.writeStatus(snap.Phase, temp, target, progress)
	}

	return snap
}

// Shutdown persists the engine's transition so a restart can resume it
func (a *Agent) Shutdown() error {
	if a.dryRun || a.engine == nil {
		return nil
	}

	rec := state.FromEngine(a.engine, a.now())
	if err := rec.Save(a.cfg.Daemon.StateFile); err != nil {
		return fmt.Errorf("failed to save transition state: %w", err)
	}

	a.logger.Info("Saved transition state",
		"path", a.cfg.Daemon.StateFile,
		"start_temp", rec.TransitionStartTemp,
		"target_temp", rec.TargetTemp,
		"elapsed_seconds", rec.ElapsedSeconds)
	return nil
}

func (a *Agent) writeStatus(phase schedule.Phase, temp, target int, progress float64) {
	if a.dryRun {
		return
	}

	path, err := config.ExpandPath(a.cfg.Daemon.StatusFile)
	if err != nil {
		a.logger.Warn("Cannot resolve status file", "error", err)
		return
	}

	err = status.Write(path, status.Status{
		Temperature: temp,
		Phase:       phase.String(),
		Target:      target,
		Progress:    progress,
		Instance:    a.instance,
	})
	if err != nil {
		a.logger.Warn("Error writing status file", "path", path, "error", err)
	}
}

// sleepFor returns the tick interval while anything is moving, and the time
// to the next boundary (capped) during a stable phase
func (a *Agent) sleepFor(snap schedule.Snapshot) time.Duration {
	tick := a.cfg.TickInterval()
	if snap.Phase.IsTransitioning() || a.engine.InTransition() || snap.Next.IsZero() {
		return tick
	}

	until := snap.Next.Sub(a.now())
	if until <= 0 {
		return tick
	}
	return min(until, maxStableSleep)
}

// wait sleeps for d and reports false if ctx was cancelled first
func (a *Agent) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
