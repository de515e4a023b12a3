package session

import (
	"sort"
	"strings"

	"github.com/checkerctl/checkerctl/internal/envfilter"
)

// SessionEnvVar carries the session ID into the child's environment.
const SessionEnvVar = "CHECKERCTL_SESSION"

// BuildChildEnv returns base with denied variables removed, extra variables
// set (replacing existing keys), and SessionEnvVar set to sessionID.
func BuildChildEnv(base []string, deny []string, extra map[string]string, sessionID string) []string {
	overrides := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		overrides[k] = v
	}
	overrides[SessionEnvVar] = sessionID

	filtered := envfilter.Filter(base, deny)
	result := make([]string, 0, len(filtered)+len(overrides))
	for _, kv := range filtered {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			if _, replaced := overrides[key]; replaced {
				continue
			}
		}
		result = append(result, kv)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		result = append(result, k+"="+overrides[k])
	}
	return result
}
