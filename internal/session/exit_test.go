package session

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeFromError(t *testing.T) {
	assert.Equal(t, 0, ExitCodeFromError(nil))
	assert.Equal(t, 1, ExitCodeFromError(errors.New("not an exit error")))

	if runtime.GOOS == "windows" {
		t.Skip("Unix-specific cases")
	}

	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"non-zero exit", "exit 42", 42},
		{"exit one", "exit 1", 1},
		{"killed by SIGTERM", "kill -TERM $$", 143},
		{"killed by SIGKILL", "kill -KILL $$", 137},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exec.Command("sh", "-c", tt.script).Run()
			assert.Equal(t, tt.want, ExitCodeFromError(err))
		})
	}
}
