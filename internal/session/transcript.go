package session

import "strings"

// Completion records how a session ended.
type Completion string

// Completion values.
const (
	// CompletionNormal means the child exited on its own after the script.
	CompletionNormal Completion = "normal"
	// CompletionForced means the driver killed the child after a stream
	// failure or cancellation.
	CompletionForced Completion = "forced"
	// CompletionTimeout means a session bound expired and the child was
	// killed.
	CompletionTimeout Completion = "timeout"
)

// Transcript is everything a child printed during one session. It is
// sealed when returned by the driver; accessors return copies.
type Transcript struct {
	lines      []string
	stderr     string
	completion Completion
	exitCode   int
}

// NewTranscript builds a sealed transcript. The driver is the usual
// producer; tests and doubles use this directly.
func NewTranscript(lines []string, stderr string, completion Completion, exitCode int) *Transcript {
	return &Transcript{
		lines:      append([]string(nil), lines...),
		stderr:     stderr,
		completion: completion,
		exitCode:   exitCode,
	}
}

// Lines returns the stdout lines in the order received.
func (t *Transcript) Lines() []string {
	return append([]string(nil), t.lines...)
}

// Len returns the number of stdout lines.
func (t *Transcript) Len() int {
	return len(t.lines)
}

// Text returns the stdout lines joined with newlines.
func (t *Transcript) Text() string {
	return strings.Join(t.lines, "\n")
}

// Stderr returns everything the child wrote to its diagnostic stream.
func (t *Transcript) Stderr() string {
	return t.stderr
}

// Completion returns how the session ended.
func (t *Transcript) Completion() Completion {
	return t.completion
}

// ExitCode returns the child's exit code, 128+signal when it was killed by
// a signal, or -1 when the driver never observed it exit.
func (t *Transcript) ExitCode() int {
	return t.exitCode
}
