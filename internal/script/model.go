// Package script provides the command script model used to drive the
// checker CLI, plus loading and validation of script files.
package script

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/checkerctl/checkerctl/internal/matcher"
)

// DefaultMaxWait bounds a marker wait when a line does not set max_wait.
const DefaultMaxWait = 30 * time.Second

// Script is an ordered list of lines sent to the target's stdin.
type Script struct {
	Meta  Meta   `yaml:"meta"`
	Lines []Line `yaml:"lines"`
}

// Validate checks that the script is valid.
func (s *Script) Validate() error {
	if err := s.Meta.Validate(); err != nil {
		return fmt.Errorf("meta: %w", err)
	}
	if len(s.Lines) == 0 {
		return errors.New("lines must contain at least one line")
	}
	for i, line := range s.Lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

// Meta identifies a script.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Validate checks that the meta section is valid.
func (m *Meta) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("name must be non-empty")
	}
	return nil
}

// Line is one line of input plus the policy applied after it is written.
// An empty Send writes a bare newline.
type Line struct {
	Send string `yaml:"send"`
	Wait Wait   `yaml:"wait,omitempty"`
}

// Validate checks that the line is valid.
func (l *Line) Validate() error {
	if strings.ContainsAny(l.Send, "\r\n") {
		return errors.New("send must be a single line")
	}
	if err := l.Wait.Validate(); err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	return nil
}

// WaitKind tells the driver how to pace the next line.
type WaitKind int

const (
	// WaitNone sends the next line immediately.
	WaitNone WaitKind = iota
	// WaitDelay sleeps for a fixed duration.
	WaitDelay
	// WaitMarker blocks until a marker shows up in new output.
	WaitMarker
)

// String returns the YAML-facing name of the kind.
func (k WaitKind) String() string {
	switch k {
	case WaitDelay:
		return "delay"
	case WaitMarker:
		return "marker"
	default:
		return "none"
	}
}

// Wait is the pacing policy applied after a line is written. Delay and
// Marker are mutually exclusive.
type Wait struct {
	Delay   Duration `yaml:"delay,omitempty"`
	Marker  string   `yaml:"marker,omitempty"`
	MaxWait Duration `yaml:"max_wait,omitempty"`
}

// FixedDelay returns a policy that sleeps for d after the write.
func FixedDelay(d time.Duration) Wait {
	return Wait{Delay: Duration(d)}
}

// WaitForMarker returns a policy that waits up to maxWait for pattern to
// appear in output produced after the write.
func WaitForMarker(pattern string, maxWait time.Duration) Wait {
	return Wait{Marker: pattern, MaxWait: Duration(maxWait)}
}

// Kind reports which policy w describes.
func (w Wait) Kind() WaitKind {
	switch {
	case w.Marker != "":
		return WaitMarker
	case w.Delay > 0:
		return WaitDelay
	default:
		return WaitNone
	}
}

// Timeout returns the effective maximum wait for a marker policy.
func (w Wait) Timeout() time.Duration {
	if w.MaxWait > 0 {
		return time.Duration(w.MaxWait)
	}
	return DefaultMaxWait
}

// CompileMarker compiles the marker expression of a marker policy.
func (w Wait) CompileMarker() (*matcher.Marker, error) {
	return matcher.Compile(w.Marker)
}

// Validate checks that the wait policy is valid.
func (w *Wait) Validate() error {
	if w.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	if w.MaxWait < 0 {
		return errors.New("max_wait must not be negative")
	}
	if w.Delay > 0 && w.Marker != "" {
		return errors.New("delay and marker are mutually exclusive")
	}
	if w.MaxWait > 0 && w.Marker == "" {
		return errors.New("max_wait requires marker")
	}
	if w.Marker != "" {
		if _, err := w.CompileMarker(); err != nil {
			return fmt.Errorf("marker: %w", err)
		}
	}
	return nil
}

// Describe renders the policy for humans, e.g. "delay 2s" or
// "marker \"Aethir>\" (max 30s)".
func (w Wait) Describe() string {
	switch w.Kind() {
	case WaitDelay:
		return "delay " + time.Duration(w.Delay).String()
	case WaitMarker:
		return fmt.Sprintf("marker %q (max %s)", w.Marker, w.Timeout())
	default:
		return "none"
	}
}
