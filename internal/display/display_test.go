package display

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordedCall struct {
	name string
	args []string
}

func TestHyprctl_SetTemperature(t *testing.T) {
	var calls []recordedCall
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		calls = append(calls, recordedCall{name: name, args: args})
		return "", nil
	}

	h := NewHyprctlWithRunner(run, testLogger)
	require.NoError(t, h.SetTemperature(context.Background(), 4000))

	require.Len(t, calls, 1)
	assert.Equal(t, "hyprctl", calls[0].name)
	assert.Equal(t, []string{"hyprsunset", "temperature", "4000"}, calls[0].args)
}

func TestHyprctl_SetTemperatureFailure(t *testing.T) {
	boom := errors.New("boom")
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		return "  no hyprsunset instance\n", boom
	}

	h := NewHyprctlWithRunner(run, testLogger)
	err := h.SetTemperature(context.Background(), 2500)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "hyprctl hyprsunset temperature 2500 failed (exit code unknown)")
	assert.Contains(t, err.Error(), "no hyprsunset instance:")
}

func TestHyprctl_EnsureRunningWhenAlreadyUp(t *testing.T) {
	var names []string
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		names = append(names, name)
		return "", nil
	}

	h := NewHyprctlWithRunner(run, testLogger)
	require.NoError(t, h.EnsureRunning(context.Background()))
	assert.Equal(t, []string{"pidof"}, names)
}

func TestDryRun(t *testing.T) {
	assert.NoError(t, NewDryRun(testLogger).SetTemperature(context.Background(), 3000))
}

func TestUpdateFilter(t *testing.T) {
	f := NewUpdateFilter(true)

	assert.True(t, f.ShouldApply(2000), "first value always applies")
	f.Record(2000)
	assert.False(t, f.ShouldApply(2000))
	assert.True(t, f.ShouldApply(2100))

	last, ok := f.LastApplied()
	assert.True(t, ok)
	assert.Equal(t, 2000, last)
}

func TestUpdateFilter_Disabled(t *testing.T) {
	f := NewUpdateFilter(false)
	f.Record(2000)

	assert.True(t, f.ShouldApply(2000))
}
