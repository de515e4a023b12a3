package report

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorEnabled decides whether output to f is coloured. setting is the
// configured mode: "always", "never" or "auto", with 1/0 and on/off
// spellings accepted. In auto mode NO_COLOR disables colour and otherwise
// f must be a terminal.
func ColorEnabled(setting string, f *os.File) bool {
	switch strings.ToLower(setting) {
	case "always", "1", "true", "yes", "on":
		return true
	case "never", "0", "false", "no", "off":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}
