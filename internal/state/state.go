package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saaga0h/candela/internal/easing"
	"github.com/saaga0h/candela/internal/transition"
	"github.com/saaga0h/candela/pkg/config"
)

// maxRecordSeconds bounds timestamps and elapsed times in a record so they
// convert to time.Duration without overflow
const maxRecordSeconds = 100 * 365 * 24 * 60 * 60

// Record is the persisted snapshot of an in-flight transition
type Record struct {
	TransitionStartTemp      int   `yaml:"transition_start_temp"`
	TransitionStartTimestamp int64 `yaml:"transition_start_timestamp"`
	ElapsedSeconds           int64 `yaml:"elapsed_seconds"`
	TargetTemp               int   `yaml:"target_temp"`
}

// FromEngine captures the engine's transition as of now
func FromEngine(e *transition.Engine, now time.Time) *Record {
	started := e.StartedAt()
	elapsed := int64(now.Sub(started) / time.Second)

	return &Record{
		TransitionStartTemp:      e.StartTemperature(),
		TransitionStartTimestamp: started.Unix(),
		ElapsedSeconds:           max(0, elapsed),
		TargetTemp:               e.Target(),
	}
}

// Load reads a record from path. Any failure, including a missing file,
// returns nil: no prior state is an expected condition.
func Load(path string) *Record {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil
	}
	if !rec.plausible() {
		return nil
	}
	return &rec
}

func (r *Record) plausible() bool {
	return r.TransitionStartTimestamp >= 0 && r.TransitionStartTimestamp <= maxRecordSeconds &&
		r.ElapsedSeconds >= 0 && r.ElapsedSeconds <= maxRecordSeconds
}

// Save writes the record to path, creating parent directories
func (r *Record) Save(path string) error {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Remove deletes the state file at path. A missing file is not an error.
func Remove(path string) error {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

// AgeSeconds is the time since the record was last advanced, never negative
func (r *Record) AgeSeconds(now time.Time) int64 {
	return max(0, now.Unix()-(r.TransitionStartTimestamp+r.ElapsedSeconds))
}

// Usable reports whether the record is fresh enough to resume from:
// younger than twice the transition duration
func (r *Record) Usable(now time.Time, durationSeconds int64) bool {
	return r.AgeSeconds(now) < 2*durationSeconds
}

// CalculateTemperature recomputes the temperature the engine held at the
// record's elapsed time
func CalculateTemperature(r *Record, durationSeconds int64, curve easing.Curve) int {
	elapsed := max(0, min(r.ElapsedSeconds, durationSeconds))
	return transition.Interpolate(
		r.TransitionStartTemp,
		r.TargetTemp,
		time.Duration(elapsed)*time.Second,
		time.Duration(durationSeconds)*time.Second,
		curve,
	)
}
