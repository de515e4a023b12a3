package script

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DryRunReport describes what a script would send and how long each line
// may block, without launching anything.
type DryRunReport struct {
	ScriptName  string
	Description string
	TotalLines  int
	Lines       []DryRunLine
	// WorstCase is the sum of every delay and marker bound.
	WorstCase time.Duration
}

// DryRunLine describes a single script line in the dry-run report.
type DryRunLine struct {
	Index int
	Send  string
	Kind  WaitKind
	Wait  string
	Bound time.Duration
}

// BuildDryRunReport creates a DryRunReport from a validated script.
func BuildDryRunReport(s *Script) *DryRunReport {
	lines := make([]DryRunLine, len(s.Lines))
	var worst time.Duration

	for i, line := range s.Lines {
		var bound time.Duration
		switch line.Wait.Kind() {
		case WaitDelay:
			bound = time.Duration(line.Wait.Delay)
		case WaitMarker:
			bound = line.Wait.Timeout()
		}
		worst += bound

		lines[i] = DryRunLine{
			Index: i,
			Send:  line.Send,
			Kind:  line.Wait.Kind(),
			Wait:  line.Wait.Describe(),
			Bound: bound,
		}
	}

	return &DryRunReport{
		ScriptName:  s.Meta.Name,
		Description: s.Meta.Description,
		TotalLines:  len(s.Lines),
		Lines:       lines,
		WorstCase:   worst,
	}
}

// FormatDryRunReport writes a human-readable dry-run report to the writer.
func FormatDryRunReport(report *DryRunReport, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "Script: %s\n", report.ScriptName)
	if report.Description != "" {
		_, _ = fmt.Fprintf(w, "Description: %s\n", report.Description)
	}
	_, _ = fmt.Fprintf(w, "Lines: %d | Worst case: %s\n", report.TotalLines, report.WorstCase)

	sep := strings.Repeat("─", 60)
	_, _ = fmt.Fprintf(w, "\n%s\n", sep)
	_, _ = fmt.Fprintf(w, " %-4s %-32s %s\n", "#", "Send", "Wait")
	_, _ = fmt.Fprintf(w, "%s\n", sep)

	for _, line := range report.Lines {
		send := line.Send
		if send == "" {
			send = "⏎"
		}
		_, _ = fmt.Fprintf(w, " %-4d %-32s %s\n", line.Index+1, truncate(send, 32), line.Wait)
	}

	_, _ = fmt.Fprintf(w, "%s\n", sep)
	_, _ = fmt.Fprintln(w, "✓ No validation errors")

	return nil
}

// truncate truncates a string to maxLen, adding "..." if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
