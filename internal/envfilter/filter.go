// Package envfilter removes environment variables from a child's
// environment by name, using path.Match glob patterns. A small set of
// variables the checker CLI needs to start at all is exempt.
package envfilter

import (
	"path"
	"strings"
)

// exemptNames lists variables that deny patterns never remove. The checker
// CLI resolves its data directory from HOME and its helpers from PATH, and
// CHECKERCTL_SESSION tags the child with the session that launched it.
var exemptNames = []string{
	"PATH",
	"HOME",
	"CHECKERCTL_SESSION",
}

// IsDenied returns true if the environment variable name matches any of the
// provided deny-list glob patterns. Invalid patterns are skipped.
//
// An exempt variable (see IsExempt) is never denied regardless of patterns.
func IsDenied(name string, patterns []string) bool {
	if IsExempt(name) {
		return false
	}
	for _, pattern := range patterns {
		matched, err := path.Match(pattern, name)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// IsExempt returns true if name must never be filtered.
func IsExempt(name string) bool {
	for _, exempt := range exemptNames {
		if strings.EqualFold(name, exempt) {
			return true
		}
	}
	return false
}

// Filter returns the entries of environ ("KEY=VALUE") whose keys are not
// denied. Entries without '=' are kept as-is.
func Filter(environ []string, patterns []string) []string {
	if len(patterns) == 0 {
		return append([]string(nil), environ...)
	}
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		key, _, ok := strings.Cut(kv, "=")
		if ok && IsDenied(key, patterns) {
			continue
		}
		out = append(out, kv)
	}
	return out
}
