package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/candela/internal/easing"
	"github.com/saaga0h/candela/internal/transition"
)

func midTransition() *Record {
	return &Record{
		TransitionStartTemp:      6500,
		TransitionStartTimestamp: 0,
		ElapsedSeconds:           1800,
		TargetTemp:               1500,
	}
}

func TestCalculateTemperature_MidTransition(t *testing.T) {
	tests := []struct {
		curve    string
		expected int
	}{
		{easing.Linear, 4000},
		{easing.EaseIn, 5250},
		{easing.EaseOut, 2750},
	}

	for _, tt := range tests {
		t.Run(tt.curve, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateTemperature(midTransition(), 3600, easing.Parse(tt.curve)))
		})
	}
}

func TestCalculateTemperature_CompleteReturnsTarget(t *testing.T) {
	rec := midTransition()

	for _, elapsed := range []int64{3600, 4000, 100000} {
		rec.ElapsedSeconds = elapsed
		assert.Equal(t, 1500, CalculateTemperature(rec, 3600, easing.Parse(easing.Smooth)))
	}
}

func TestCalculateTemperature_MatchesEngine(t *testing.T) {
	curves := append(easing.Names(), "cubic_bezier(0.25,0.1,0.25,1)", "typo")
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	for _, name := range curves {
		curve := easing.Parse(name)
		for elapsed := int64(0); elapsed <= 3700; elapsed += 137 {
			rec := &Record{
				TransitionStartTemp: 1500,
				ElapsedSeconds:      elapsed,
				TargetTemp:          6500,
			}

			engine := transition.NewEngine(time.Hour, curve, 1500, clock)
			engine.AlignWithSchedule(1500, 6500, time.Duration(elapsed)*time.Second)

			require.Equal(t, engine.Current(), CalculateTemperature(rec, 3600, curve),
				"curve %s elapsed %d", name, elapsed)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.yaml")
	rec := &Record{
		TransitionStartTemp:      6500,
		TransitionStartTimestamp: 1717261200,
		ElapsedSeconds:           1234,
		TargetTemp:               1500,
	}

	require.NoError(t, rec.Save(path))
	loaded := Load(path)

	require.NotNil(t, loaded)
	assert.Equal(t, *rec, *loaded)
}

func TestLoad_MissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, Load(filepath.Join(dir, "missing.yaml")))

	corrupt := filepath.Join(dir, "corrupt.yaml")
	require.NoError(t, os.WriteFile(corrupt, []byte("target_temp: [1500"), 0o644))
	assert.Nil(t, Load(corrupt))
}

func TestLoad_RejectsImplausibleRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "huge elapsed", content: "transition_start_temp: 6500\ntransition_start_timestamp: 1717261200\nelapsed_seconds: 9300000000\ntarget_temp: 1500\n"},
		{name: "negative elapsed", content: "transition_start_temp: 6500\ntransition_start_timestamp: 1717261200\nelapsed_seconds: -5\ntarget_temp: 1500\n"},
		{name: "negative timestamp", content: "transition_start_temp: 6500\ntransition_start_timestamp: -1\nelapsed_seconds: 10\ntarget_temp: 1500\n"},
		{name: "huge timestamp", content: "transition_start_temp: 6500\ntransition_start_timestamp: 9223372036854775807\nelapsed_seconds: 10\ntarget_temp: 1500\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			assert.Nil(t, Load(path))
		})
	}
}

func TestCalculateTemperature_HugeElapsedIsTarget(t *testing.T) {
	rec := midTransition()
	rec.ElapsedSeconds = 9_300_000_000

	assert.Equal(t, 1500, CalculateTemperature(rec, 3600, easing.Parse(easing.Linear)))
}

func TestSave_PropagatesErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := midTransition().Save(filepath.Join(blocker, "state.yaml"))
	assert.Error(t, err)
}

func TestSave_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, midTransition().Save("~/.cache/candela/state.yaml"))
	assert.FileExists(t, filepath.Join(home, ".cache", "candela", "state.yaml"))
	assert.NotNil(t, Load("~/.cache/candela/state.yaml"))
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, midTransition().Save(path))

	require.NoError(t, Remove(path))
	assert.NoFileExists(t, path)
	assert.NoError(t, Remove(path), "missing file is fine")
}

func TestAgeSeconds(t *testing.T) {
	rec := &Record{TransitionStartTimestamp: 1000, ElapsedSeconds: 200}

	assert.Equal(t, int64(300), rec.AgeSeconds(time.Unix(1500, 0)))
	assert.Equal(t, int64(0), rec.AgeSeconds(time.Unix(900, 0)), "clock skew saturates")
}

func TestUsable(t *testing.T) {
	rec := &Record{TransitionStartTimestamp: 1000, ElapsedSeconds: 0}

	assert.True(t, rec.Usable(time.Unix(1000+7199, 0), 3600))
	assert.False(t, rec.Usable(time.Unix(1000+7200, 0), 3600))
	assert.False(t, rec.Usable(time.Unix(1000, 0), 0))
}

func TestFromEngine(t *testing.T) {
	start := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	now := start.Add(25 * time.Minute)
	engine := transition.NewEngine(time.Hour, easing.Parse(easing.Linear), 6500, func() time.Time { return now })
	engine.AlignWithSchedule(6500, 1500, 25*time.Minute)

	rec := FromEngine(engine, now)

	assert.Equal(t, 6500, rec.TransitionStartTemp)
	assert.Equal(t, start.Unix(), rec.TransitionStartTimestamp)
	assert.Equal(t, int64(1500), rec.ElapsedSeconds)
	assert.Equal(t, 1500, rec.TargetTemp)
	assert.Equal(t, engine.Current(), CalculateTemperature(rec, 3600, easing.Parse(easing.Linear)))
}
