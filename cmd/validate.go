package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/checkerctl/checkerctl/internal/report"
	"github.com/checkerctl/checkerctl/internal/script"
)

// ValidationResult represents the validation outcome for a single script file.
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Name     string   `json:"name,omitempty"`
	Lines    int      `json:"lines,omitempty"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

var validateFormatFlag string

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate script files without running them",
	Long: `Validate one or more script YAML files without running them.

Checks schema compliance (unknown keys, required fields) and the rules
for each line: a single-line send, delay and marker not combined,
max_wait only with a marker, and markers that compile. A script whose
last line does not send the checker's exit command gets a warning, since
such a session only ends when its timeout expires.

Exit code 0 if all files are valid, 1 if any file has errors.

Formats:
  text   Human-readable output to stderr (default)
  json   Structured JSON to stdout

Examples:
  checkerctl validate probe.yaml
  checkerctl validate a.yaml b.yaml c.yaml
  checkerctl validate --format json probe.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	validateCmd.Flags().StringVar(&validateFormatFlag, "format", "text",
		"Output format: text, json")
	rootCmd.AddCommand(validateCmd)
}

// runValidate implements the validate command: iterates over file args,
// validates each independently, and outputs results in the chosen format.
func runValidate(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(validateFormatFlag)
	if err != nil {
		return err
	}

	results := make([]ValidationResult, 0, len(args))
	invalid := 0
	for _, path := range args {
		result := validateFile(path)
		results = append(results, result)
		if !result.Valid {
			invalid++
		}
	}

	switch format {
	case report.FormatText:
		formatValidateText(cmd.ErrOrStderr(), results)
	case report.FormatJSON:
		if err := report.WriteJSON(cmd.OutOrStdout(), results); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d files invalid", invalid, len(results))
	}
	return nil
}

// validateFile loads a single script file with script.LoadFile, which
// performs strict YAML parsing and line validation, and adds warnings for
// scripts that never ask the checker to exit.
func validateFile(path string) ValidationResult {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ValidationResult{
			File:   path,
			Errors: []string{fmt.Sprintf("failed to resolve path: %v", err)},
		}
	}

	s, err := script.LoadFile(absPath)
	if err != nil {
		return ValidationResult{
			File:   path,
			Errors: []string{err.Error()},
		}
	}

	result := ValidationResult{
		File:   path,
		Valid:  true,
		Name:   s.Meta.Name,
		Lines:  len(s.Lines),
		Errors: []string{},
	}
	if last := s.Lines[len(s.Lines)-1]; strings.TrimSpace(last.Send) != exitCommand {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("last line sends %q, not %q; the session will end by timeout", last.Send, exitCommand))
	}
	return result
}

// exitCommand makes the checker CLI save its state and exit.
const exitCommand = "aethir exit"

// formatValidateText writes human-readable validation results.
func formatValidateText(w io.Writer, results []ValidationResult) {
	validCount := 0
	for _, r := range results {
		if r.Valid {
			validCount++
			fmt.Fprintf(w, "✓ %s: valid (%s, %d lines)\n", r.File, r.Name, r.Lines)
			for _, warn := range r.Warnings {
				fmt.Fprintf(w, "  ! %s\n", warn)
			}
		} else {
			fmt.Fprintf(w, "✗ %s:\n", r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(w, "\nResult: %d/%d files valid\n", validCount, len(results))
	}
}
