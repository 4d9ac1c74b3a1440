package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Applier sets the display color temperature
type Applier interface {
	SetTemperature(ctx context.Context, kelvin int) error
}

// Runner executes an external command and returns its stderr on failure.
// Hyprctl uses exec.CommandContext unless a Runner is injected.
type Runner func(ctx context.Context, name string, args ...string) (stderr string, err error)

// Hyprctl applies temperatures through hyprsunset's IPC via hyprctl
type Hyprctl struct {
	run    Runner
	logger *slog.Logger
}

// NewHyprctl creates an applier that shells out to hyprctl
func NewHyprctl(logger *slog.Logger) *Hyprctl {
	return &Hyprctl{run: execRunner, logger: logger}
}

// NewHyprctlWithRunner creates an applier with a custom command runner
func NewHyprctlWithRunner(run Runner, logger *slog.Logger) *Hyprctl {
	return &Hyprctl{run: run, logger: logger}
}

// SetTemperature runs `hyprctl hyprsunset temperature <kelvin>`
func (h *Hyprctl) SetTemperature(ctx context.Context, kelvin int) error {
	args := []string{"hyprsunset", "temperature", strconv.Itoa(kelvin)}

	stderr, err := h.run(ctx, "hyprctl", args...)
	if err != nil {
		var exitErr *exec.ExitError
		code := "unknown"
		if errors.As(err, &exitErr) {
			code = strconv.Itoa(exitErr.ExitCode())
		}
		return fmt.Errorf("hyprctl %s failed (exit code %s): %s: %w",
			strings.Join(args, " "), code, strings.TrimSpace(stderr), err)
	}

	h.logger.Debug("Applied temperature", "kelvin", kelvin)
	return nil
}

// EnsureRunning starts hyprsunset if no process of that name exists
func (h *Hyprctl) EnsureRunning(ctx context.Context) error {
	if _, err := h.run(ctx, "pidof", "hyprsunset"); err == nil {
		return nil
	}

	h.logger.Info("Starting hyprsunset")
	cmd := exec.Command("hyprsunset")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start hyprsunset: %w", err)
	}
	// hyprsunset keeps running after candela exits
	return cmd.Process.Release()
}

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// DryRun logs temperatures instead of applying them
type DryRun struct {
	logger *slog.Logger
}

// NewDryRun creates a logging-only applier
func NewDryRun(logger *slog.Logger) *DryRun {
	return &DryRun{logger: logger}
}

// SetTemperature implements Applier
func (d *DryRun) SetTemperature(ctx context.Context, kelvin int) error {
	d.logger.Info("Dry run: would set temperature", "kelvin", kelvin)
	return nil
}
