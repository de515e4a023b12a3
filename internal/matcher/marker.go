// Package matcher decides whether captured output satisfies a wait marker.
//
// Marker syntax:
//   - Literal string: satisfied when the output contains it (default)
//   - {{ .any }}: satisfied by any new output at all
//   - {{ .regex "<pattern>" }}: satisfied when the pattern matches the output
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// regexTemplateRe matches {{ .regex "<pattern>" }} in a marker.
var regexTemplateRe = regexp.MustCompile(`^\{\{\s*\.regex\s+"(.+?)"\s*\}\}$`)

// Kind identifies how a marker is matched.
type Kind string

// Marker kinds.
const (
	KindLiteral Kind = "literal"
	KindAny     Kind = "any"
	KindRegex   Kind = "regex"
)

// Marker is a compiled wait marker.
type Marker struct {
	Kind    Kind
	Pattern string
	re      *regexp.Regexp
}

// Compile parses a marker expression. Regex markers are compiled once here
// so repeated matching while output streams in stays cheap.
func Compile(expr string) (*Marker, error) {
	if expr == "" {
		return nil, errors.New("marker must be non-empty")
	}

	// Only check templates if expr contains "{{"
	if !strings.Contains(expr, "{{") {
		return &Marker{Kind: KindLiteral, Pattern: expr}, nil
	}

	trimmed := strings.TrimSpace(expr)
	if trimmed == "{{ .any }}" || trimmed == "{{.any}}" {
		return &Marker{Kind: KindAny, Pattern: trimmed}, nil
	}

	if m := regexTemplateRe.FindStringSubmatch(trimmed); m != nil {
		re, err := regexp.Compile(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid marker regex %q: %w", m[1], err)
		}
		return &Marker{Kind: KindRegex, Pattern: m[1], re: re}, nil
	}

	// Braces that are not a known template are matched literally.
	return &Marker{Kind: KindLiteral, Pattern: expr}, nil
}

// MustCompile is like Compile but panics on error. Intended for markers
// that are constants in code.
func MustCompile(expr string) *Marker {
	m, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether output satisfies the marker.
func (m *Marker) Match(output string) bool {
	switch m.Kind {
	case KindAny:
		return output != ""
	case KindRegex:
		return m.re.MatchString(output)
	default:
		return strings.Contains(output, m.Pattern)
	}
}

// String returns a human-readable form for logs and reports.
func (m *Marker) String() string {
	switch m.Kind {
	case KindAny:
		return "{{ .any }}"
	case KindRegex:
		return fmt.Sprintf("regex %q", m.Pattern)
	default:
		return fmt.Sprintf("%q", m.Pattern)
	}
}
