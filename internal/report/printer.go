// Package report renders command results for people (styled text) and
// for programs (JSON).
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Printer writes status lines with a leading mark.
type Printer struct {
	w     io.Writer
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter returns a Printer writing to w. With color false no escape
// sequences are emitted whatever w is.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:     w,
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		label: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// OK prints a success line.
func (p *Printer) OK(format string, args ...any) {
	p.line(p.ok.Render("✓"), format, args...)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.warn.Render("!"), format, args...)
}

// Fail prints a failure line.
func (p *Printer) Fail(format string, args ...any) {
	p.line(p.fail.Render("✗"), format, args...)
}

// Info prints an unmarked line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s\n", fmt.Sprintf(format, args...))
}

// Field prints an aligned "name: value" pair.
func (p *Printer) Field(name string, value any) {
	fmt.Fprintf(p.w, "  %s %v\n", p.label.Render(fmt.Sprintf("%-16s", name+":")), value)
}

// Section prints a heading.
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w, p.label.Render(title))
}

// Muted prints one dimmed line.
func (p *Printer) Muted(line string) {
	fmt.Fprintln(p.w, p.muted.Render(line))
}

// Mark returns the success or failure mark for ok.
func (p *Printer) Mark(ok bool) string {
	if ok {
		return p.ok.Render("✓")
	}
	return p.fail.Render("✗")
}

func (p *Printer) line(mark, format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", mark, fmt.Sprintf(format, args...))
}
