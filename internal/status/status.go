package status

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PhaseManual marks a status written by `candela set`
const PhaseManual = "manual"

// Status is what the daemon reports about itself between ticks
type Status struct {
	Temperature int     `json:"temp"`
	Phase       string  `json:"phase"`
	Target      int     `json:"target"`
	Progress    float64 `json:"progress"`
	Instance    string  `json:"instance,omitempty"`
}

// Write stores s at path as key=value lines
func Write(path string, s Status) error {
	var b strings.Builder
	fmt.Fprintf(&b, "temp=%d\n", s.Temperature)
	fmt.Fprintf(&b, "phase=%s\n", s.Phase)
	fmt.Fprintf(&b, "target=%d\n", s.Target)
	fmt.Fprintf(&b, "progress=%.2f\n", s.Progress)
	if s.Instance != "" {
		fmt.Fprintf(&b, "instance=%s\n", s.Instance)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	return nil
}

// Read parses the status file at path. It is lenient: a missing file or
// unparsable lines leave zero values and phase "unknown".
func Read(path string) Status {
	s := Status{Phase: "unknown"}

	f, err := os.Open(path)
	if err != nil {
		return s
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "temp":
			if v, err := strconv.Atoi(val); err == nil {
				s.Temperature = v
			}
		case "phase":
			s.Phase = val
		case "target":
			if v, err := strconv.Atoi(val); err == nil {
				s.Target = v
			}
		case "progress":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				s.Progress = v
			}
		case "instance":
			s.Instance = val
		}
	}

	return s
}

// JSON renders s with progress rounded to two decimals
func (s Status) JSON() ([]byte, error) {
	s.Progress = float64(int64(s.Progress*100+0.5)) / 100
	return json.Marshal(s)
}

// Text renders s in the same key=value form as the status file
func (s Status) Text() string {
	return fmt.Sprintf("temp=%d\nphase=%s\ntarget=%d\nprogress=%.2f",
		s.Temperature, s.Phase, s.Target, s.Progress)
}
