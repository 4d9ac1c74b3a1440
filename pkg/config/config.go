package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Mode selects how the day/night schedule is derived
type Mode string

const (
	// ModeAuto follows computed sunrise and sunset
	ModeAuto Mode = "auto"
	// ModeFixed follows the wakeup and bedtime clock times
	ModeFixed Mode = "fixed"
)

const (
	defaultTickIntervalSeconds = 5
	defaultStatusFile          = "/tmp/candela.status"
	defaultStateFile           = "~/.cache/candela/state.yaml"
)

// Location is the observer position used for sunrise/sunset in auto mode
type Location struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

// Schedule holds HH:MM clock times used in fixed mode
type Schedule struct {
	Wakeup  string `yaml:"wakeup" json:"wakeup"`
	Bedtime string `yaml:"bedtime" json:"bedtime"`
}

// Transition controls how long a change takes and how it is shaped
type Transition struct {
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
	Easing          string `yaml:"easing" json:"easing"`
}

// Temperature holds the day and night targets in Kelvin
type Temperature struct {
	Day   int `yaml:"day" json:"day"`
	Night int `yaml:"night" json:"night"`
}

// Daemon holds run-loop settings
type Daemon struct {
	TickIntervalSeconds  int    `yaml:"tick_interval_seconds" json:"tick_interval_seconds"`
	StatusFile           string `yaml:"status_file" json:"status_file"`
	OptimizeUpdates      bool   `yaml:"optimize_updates" json:"optimize_updates"`
	StatusUpdateInterval int    `yaml:"status_update_interval" json:"status_update_interval"`
	StateFile            string `yaml:"state_file" json:"state_file"`
}

// Config holds the configuration snapshot for one candela run
type Config struct {
	Mode        Mode        `yaml:"mode" json:"mode"`
	Location    Location    `yaml:"location" json:"location"`
	Schedule    Schedule    `yaml:"schedule" json:"schedule"`
	Transition  Transition  `yaml:"transition" json:"transition"`
	Temperature Temperature `yaml:"temperature" json:"temperature"`
	Daemon      Daemon      `yaml:"daemon" json:"daemon"`
	LogLevel    string      `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Mode: ModeAuto,
		Location: Location{
			Latitude:  0.0,
			Longitude: 0.0,
		},
		Schedule: Schedule{
			Wakeup:  "07:00",
			Bedtime: "22:00",
		},
		Transition: Transition{
			DurationMinutes: 60,
			Easing:          "smooth",
		},
		Temperature: Temperature{
			Day:   6500,
			Night: 1500,
		},
		Daemon: Daemon{
			TickIntervalSeconds:  defaultTickIntervalSeconds,
			StatusFile:           defaultStatusFile,
			OptimizeUpdates:      true,
			StatusUpdateInterval: 1,
			StateFile:            defaultStateFile,
		},
		LogLevel: "info",
	}
}

// FindConfigFile returns the first existing config file in the search path,
// or an empty string when there is none
func FindConfigFile() string {
	candidates := []string{"candela.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, "candela", "config.yaml"),
			filepath.Join(dir, "candela.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadFromFile overlays values from a YAML file. Keys missing from the file
// keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}

	c.applyDaemonDefaults()
	return nil
}

// applyDaemonDefaults restores defaults for daemon fields a file left empty
func (c *Config) applyDaemonDefaults() {
	if c.Daemon.TickIntervalSeconds == 0 {
		c.Daemon.TickIntervalSeconds = defaultTickIntervalSeconds
	}
	if c.Daemon.StatusFile == "" {
		c.Daemon.StatusFile = defaultStatusFile
	}
	if c.Daemon.StateFile == "" {
		c.Daemon.StateFile = defaultStateFile
	}
}

// LoadFromEnv loads configuration from environment variables with CANDELA_ prefix
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("CANDELA_MODE"); v != "" {
		switch Mode(strings.ToLower(v)) {
		case ModeAuto:
			c.Mode = ModeAuto
		case ModeFixed:
			c.Mode = ModeFixed
		}
	}

	// Location
	if v := os.Getenv("CANDELA_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Location.Latitude = lat
		}
	}
	if v := os.Getenv("CANDELA_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Location.Longitude = lon
		}
	}

	// Temperature
	if v := os.Getenv("CANDELA_DAY_TEMP"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.Temperature.Day = temp
		}
	}
	if v := os.Getenv("CANDELA_NIGHT_TEMP"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.Temperature.Night = temp
		}
	}

	// Transition
	if v := os.Getenv("CANDELA_TRANSITION_DURATION"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			c.Transition.DurationMinutes = minutes
		}
	}
	if v := os.Getenv("CANDELA_EASING"); v != "" {
		c.Transition.Easing = v
	}

	// Schedule
	if v := os.Getenv("CANDELA_WAKEUP"); v != "" {
		c.Schedule.Wakeup = v
	}
	if v := os.Getenv("CANDELA_BEDTIME"); v != "" {
		c.Schedule.Bedtime = v
	}

	// Daemon
	if v := os.Getenv("CANDELA_TICK_INTERVAL"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			c.Daemon.TickIntervalSeconds = interval
		}
	}
	if v := os.Getenv("CANDELA_STATUS_FILE"); v != "" {
		c.Daemon.StatusFile = v
	}
	if v := os.Getenv("CANDELA_OPTIMIZE_UPDATES"); v != "" {
		c.Daemon.OptimizeUpdates = strings.ToLower(v) != "false"
	}
	if v := os.Getenv("CANDELA_STATUS_UPDATE_INTERVAL"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			c.Daemon.StatusUpdateInterval = interval
		}
	}
	if v := os.Getenv("CANDELA_STATE_FILE"); v != "" {
		c.Daemon.StateFile = v
	}

	if v := os.Getenv("CANDELA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// RegisterFlags defines the configuration override flags on fs.
// Defaults shown in help come from NewConfig.
func RegisterFlags(fs *pflag.FlagSet) {
	d := NewConfig()

	fs.StringP("config", "c", "", "Path to YAML config file")

	fs.String("mode", string(d.Mode), "Schedule mode (auto, fixed)")
	fs.Float64("latitude", d.Location.Latitude, "Geographic latitude for sunrise/sunset")
	fs.Float64("longitude", d.Location.Longitude, "Geographic longitude for sunrise/sunset")
	fs.String("wakeup", d.Schedule.Wakeup, "Wakeup time for fixed mode (HH:MM)")
	fs.String("bedtime", d.Schedule.Bedtime, "Bedtime for fixed mode (HH:MM)")
	fs.Int("duration", d.Transition.DurationMinutes, "Transition duration in minutes")
	fs.String("easing", d.Transition.Easing, "Easing curve name or cubic_bezier(x1,y1,x2,y2)")
	fs.Int("day-temp", d.Temperature.Day, "Day color temperature (K)")
	fs.Int("night-temp", d.Temperature.Night, "Night color temperature (K)")
	fs.Int("tick-interval", d.Daemon.TickIntervalSeconds, "Daemon tick interval in seconds")
	fs.String("status-file", d.Daemon.StatusFile, "Status file path")
	fs.String("state-file", d.Daemon.StateFile, "Persisted transition state path")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
}

// ConfigPath returns the --config value, if one was given
func ConfigPath(fs *pflag.FlagSet) string {
	path, _ := fs.GetString("config")
	return path
}

// LoadFromFlags applies flags that were explicitly set on an already parsed fs
func (c *Config) LoadFromFlags(fs *pflag.FlagSet) {
	if fs.Changed("mode") {
		v, _ := fs.GetString("mode")
		c.Mode = Mode(strings.ToLower(v))
	}
	if fs.Changed("latitude") {
		c.Location.Latitude, _ = fs.GetFloat64("latitude")
	}
	if fs.Changed("longitude") {
		c.Location.Longitude, _ = fs.GetFloat64("longitude")
	}
	if fs.Changed("wakeup") {
		c.Schedule.Wakeup, _ = fs.GetString("wakeup")
	}
	if fs.Changed("bedtime") {
		c.Schedule.Bedtime, _ = fs.GetString("bedtime")
	}
	if fs.Changed("duration") {
		c.Transition.DurationMinutes, _ = fs.GetInt("duration")
	}
	if fs.Changed("easing") {
		c.Transition.Easing, _ = fs.GetString("easing")
	}
	if fs.Changed("day-temp") {
		c.Temperature.Day, _ = fs.GetInt("day-temp")
	}
	if fs.Changed("night-temp") {
		c.Temperature.Night, _ = fs.GetInt("night-temp")
	}
	if fs.Changed("tick-interval") {
		c.Daemon.TickIntervalSeconds, _ = fs.GetInt("tick-interval")
	}
	if fs.Changed("status-file") {
		c.Daemon.StatusFile, _ = fs.GetString("status-file")
	}
	if fs.Changed("state-file") {
		c.Daemon.StateFile, _ = fs.GetString("state-file")
	}
	if fs.Changed("log-level") {
		c.LogLevel, _ = fs.GetString("log-level")
	}
}

// Validate checks that configuration values are usable.
// Clock times and coordinates are checked by the schedule resolver.
func (c *Config) Validate() error {
	if c.Mode != ModeAuto && c.Mode != ModeFixed {
		return fmt.Errorf("invalid mode: %s (must be auto or fixed)", c.Mode)
	}
	if c.Temperature.Day <= 0 || c.Temperature.Day > 65535 {
		return fmt.Errorf("day temperature must be between 1 and 65535")
	}
	if c.Temperature.Night <= 0 || c.Temperature.Night > 65535 {
		return fmt.Errorf("night temperature must be between 1 and 65535")
	}
	if c.Transition.DurationMinutes < 0 {
		return fmt.Errorf("transition duration must not be negative")
	}
	if c.Daemon.TickIntervalSeconds <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Daemon.StatusUpdateInterval < 0 {
		return fmt.Errorf("status update interval must not be negative")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// TransitionDuration returns the transition length as a time.Duration
func (c *Config) TransitionDuration() time.Duration {
	return time.Duration(c.Transition.DurationMinutes) * time.Minute
}

// TickInterval returns the daemon tick interval as a time.Duration
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Daemon.TickIntervalSeconds) * time.Second
}

// StatusEvery returns how many ticks pass between status file writes
func (c *Config) StatusEvery() int {
	if c.Daemon.StatusUpdateInterval <= 0 {
		return 1
	}
	return c.Daemon.StatusUpdateInterval
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
