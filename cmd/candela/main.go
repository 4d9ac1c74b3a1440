package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/saaga0h/candela/internal/daemon"
	"github.com/saaga0h/candela/internal/display"
	"github.com/saaga0h/candela/internal/easing"
	"github.com/saaga0h/candela/internal/schedule"
	"github.com/saaga0h/candela/internal/state"
	"github.com/saaga0h/candela/internal/status"
	"github.com/saaga0h/candela/internal/transition"
	"github.com/saaga0h/candela/pkg/config"
)

const usage = `Usage: candela [flags] [command]

Commands:
  daemon     Run the color temperature daemon (default)
  now        Print the current display temperature
  status     Print the daemon status file
  set <K>    Apply a temperature once and stop resuming the last transition
  config     Print the effective configuration

Flags:
`

// options are the flags that select behaviour rather than configuration
type options struct {
	verbose bool
	jsonOut bool
	quiet   bool
	dryRun  bool
}

func main() {
	fs := pflag.NewFlagSet("candela", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	config.RegisterFlags(fs)
	var opts options
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	fs.BoolVar(&opts.jsonOut, "json", false, "Print command output as JSON")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Log temperatures instead of applying them")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	// Load configuration with hierarchy: defaults → file → env → flags
	cfg, err := loadConfig(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel, opts),
	}))
	slog.SetDefault(logger)

	if !easing.Known(cfg.Transition.Easing) {
		logger.Warn("Unknown easing curve, using linear", "easing", cfg.Transition.Easing)
	}

	command := "daemon"
	args := fs.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "daemon":
		err = runDaemon(cfg, opts, logger)
	case "now":
		err = runNow(cfg, opts)
	case "status":
		err = runStatus(cfg, opts)
	case "set":
		err = runSet(cfg, opts, args, os.Stdout, logger)
	case "config":
		err = runConfig(cfg, opts)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fs.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.NewConfig()

	path := config.ConfigPath(fs)
	if path == "" {
		path = config.FindConfigFile()
	}
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	cfg.LoadFromEnv()
	cfg.LoadFromFlags(fs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDaemon(cfg *config.Config, opts options, logger *slog.Logger) error {
	resolver, err := schedule.New(cfg, nil)
	if err != nil {
		return err
	}

	// Set up context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var applier display.Applier
	if opts.dryRun {
		applier = display.NewDryRun(logger)
	} else {
		hyprctl := display.NewHyprctl(logger)
		if err := hyprctl.EnsureRunning(ctx); err != nil {
			logger.Warn("Could not start hyprsunset", "error", err)
		}
		applier = hyprctl
	}

	agent := daemon.NewAgent(cfg, resolver, applier, logger, daemon.WithDryRun(opts.dryRun))
	if err := agent.Run(ctx); err != nil {
		return err
	}

	logger.Info("Candela shutdown complete")
	return nil
}

func runNow(cfg *config.Config, opts options) error {
	temp, err := currentTemperature(cfg, time.Now())
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return printJSON(map[string]int{"temp": temp})
	}
	fmt.Printf("%dK\n", temp)
	return nil
}

// currentTemperature reports the temperature last written to the status
// file, which includes manual sets and resumed transitions. Without a status
// file it falls back to the scheduled temperature at t.
func currentTemperature(cfg *config.Config, t time.Time) (int, error) {
	path, err := config.ExpandPath(cfg.Daemon.StatusFile)
	if err != nil {
		return 0, err
	}
	if s := status.Read(path); s.Temperature > 0 {
		return s.Temperature, nil
	}

	resolver, err := schedule.New(cfg, nil)
	if err != nil {
		return 0, err
	}
	return temperatureAt(resolver, cfg, t), nil
}

// temperatureAt is what a daemon aligned with the schedule would show at t
func temperatureAt(resolver *schedule.Resolver, cfg *config.Config, t time.Time) int {
	snap := resolver.Describe(t)
	if w := snap.Window; w != nil {
		curve := easing.Parse(cfg.Transition.Easing)
		return transition.Interpolate(w.StartTemp, w.TargetTemp, w.Elapsed(t), cfg.TransitionDuration(), curve)
	}
	return snap.Target
}

func runStatus(cfg *config.Config, opts options) error {
	path, err := config.ExpandPath(cfg.Daemon.StatusFile)
	if err != nil {
		return err
	}

	s := status.Read(path)
	if opts.jsonOut {
		data, err := s.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(s.Text())
	return nil
}

func runSet(cfg *config.Config, opts options, args []string, stdout io.Writer, logger *slog.Logger) error {
	if len(args) != 1 {
		return errors.New("set requires exactly one temperature argument")
	}
	kelvin, err := parseKelvin(args[0])
	if err != nil {
		return err
	}

	if !opts.quiet {
		fmt.Fprintf(stdout, "Setting temperature to %dK\n", kelvin)
	}

	ctx := context.Background()
	var applier display.Applier = display.NewHyprctl(logger)
	if opts.dryRun {
		applier = display.NewDryRun(logger)
	}
	if err := applier.SetTemperature(ctx, kelvin); err != nil {
		return err
	}

	if opts.dryRun {
		return nil
	}

	// A manual temperature must not be overridden by a resumed transition
	if err := state.Remove(cfg.Daemon.StateFile); err != nil {
		logger.Warn("Could not remove state file", "error", err)
	}

	path, err := config.ExpandPath(cfg.Daemon.StatusFile)
	if err != nil {
		return err
	}
	return status.Write(path, status.Status{
		Temperature: kelvin,
		Phase:       status.PhaseManual,
		Target:      kelvin,
		Progress:    1.0,
	})
}

func parseKelvin(arg string) (int, error) {
	kelvin, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid temperature %q: %w", arg, err)
	}
	if kelvin <= 0 || kelvin > transition.MaxTemperature {
		return 0, fmt.Errorf("temperature must be between 1 and %d", transition.MaxTemperature)
	}
	return kelvin, nil
}

func runConfig(cfg *config.Config, opts options) error {
	if opts.jsonOut {
		return printJSON(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// logLevel applies --verbose and --quiet on top of the configured level
func logLevel(configured string, opts options) slog.Level {
	switch {
	case opts.verbose:
		return slog.LevelDebug
	case opts.quiet:
		return slog.LevelWarn
	}
	return parseLogLevel(configured)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
