package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildChildEnv(t *testing.T) {
	base := []string{
		"PATH=/usr/bin",
		"HOME=/root",
		"AWS_SECRET=x",
		"LANG=C",
		"CHECKERCTL_SESSION=stale",
	}

	got := BuildChildEnv(base, []string{"AWS_*"}, map[string]string{"LANG": "en_US.UTF-8", "EXTRA": "1"}, "abc")

	assert.Equal(t, []string{
		"PATH=/usr/bin",
		"HOME=/root",
		"CHECKERCTL_SESSION=abc",
		"EXTRA=1",
		"LANG=en_US.UTF-8",
	}, got)
}

func TestBuildChildEnv_DenyAllKeepsExempt(t *testing.T) {
	got := BuildChildEnv([]string{"PATH=/bin", "HOME=/h", "USER=me"}, []string{"*"}, nil, "id")
	assert.Equal(t, []string{"PATH=/bin", "HOME=/h", "CHECKERCTL_SESSION=id"}, got)
}
