package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidScript(t *testing.T) {
	yaml := `
meta:
  name: "wallet-probe"
  description: "Probe the wallet"
lines:
  - send: "y"
    wait:
      marker: "Aethir>"
      max_wait: 30s
  - send: "aethir wallet export"
    wait:
      delay: 3s
  - send: "aethir exit"
`
	s, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "wallet-probe", s.Meta.Name)
	assert.Equal(t, "Probe the wallet", s.Meta.Description)
	require.Len(t, s.Lines, 3)

	assert.Equal(t, "y", s.Lines[0].Send)
	assert.Equal(t, WaitMarker, s.Lines[0].Wait.Kind())
	assert.Equal(t, "Aethir>", s.Lines[0].Wait.Marker)
	assert.Equal(t, 30*time.Second, s.Lines[0].Wait.Timeout())

	assert.Equal(t, WaitDelay, s.Lines[1].Wait.Kind())
	assert.Equal(t, Duration(3*time.Second), s.Lines[1].Wait.Delay)

	assert.Equal(t, WaitNone, s.Lines[2].Wait.Kind())
}

func TestLoad_MarkerWithoutMaxWaitUsesDefault(t *testing.T) {
	yaml := `
meta:
  name: "m"
lines:
  - send: "aethir license summary"
    wait:
      marker: "Total Delegated"
`
	s, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxWait, s.Lines[0].Wait.Timeout())
}

func TestLoad_EmptySendAllowed(t *testing.T) {
	yaml := `
meta:
  name: "enter"
lines:
  - send: ""
    wait:
      delay: 100ms
`
	s, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, "", s.Lines[0].Send)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty file",
			yaml:    "",
			wantErr: "empty script file",
		},
		{
			name: "unknown field",
			yaml: `
meta:
  name: "x"
lines:
  - send: "a"
    expect: "b"
`,
			wantErr: "field expect not found",
		},
		{
			name: "missing name",
			yaml: `
meta:
  description: "no name"
lines:
  - send: "a"
`,
			wantErr: "meta: name must be non-empty",
		},
		{
			name: "no lines",
			yaml: `
meta:
  name: "x"
lines: []
`,
			wantErr: "lines must contain at least one line",
		},
		{
			name: "delay and marker",
			yaml: `
meta:
  name: "x"
lines:
  - send: "a"
    wait:
      delay: 1s
      marker: "b"
`,
			wantErr: "line 0: wait: delay and marker are mutually exclusive",
		},
		{
			name: "max_wait without marker",
			yaml: `
meta:
  name: "x"
lines:
  - send: "a"
    wait:
      max_wait: 1s
`,
			wantErr: "max_wait requires marker",
		},
		{
			name: "bad duration",
			yaml: `
meta:
  name: "x"
lines:
  - send: "a"
    wait:
      delay: soon
`,
			wantErr: `invalid duration "soon"`,
		},
		{
			name: "negative delay",
			yaml: `
meta:
  name: "x"
lines:
  - send: "a"
    wait:
      delay: -1s
`,
			wantErr: "delay must not be negative",
		},
		{
			name: "bad marker regex",
			yaml: `
meta:
  name: "x"
lines:
  - send: "a"
    wait:
      marker: '{{ .regex "[unclosed" }}'
`,
			wantErr: "invalid marker regex",
		},
		{
			name: "multi-line send",
			yaml: `
meta:
  name: "x"
lines:
  - send: "a\nb"
`,
			wantErr: "send must be a single line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  name: probe\nlines:\n  - send: aethir exit\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "probe", s.Meta.Name)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open script file")
}

func TestBuiltin_AllLoad(t *testing.T) {
	names := BuiltinNames()
	assert.Equal(t, []string{LicenseApprove, LicenseSummary, WalletCreate, WalletExport}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			require.NoError(t, err)
			assert.Equal(t, name, s.Meta.Name)
			assert.Equal(t, "aethir exit", s.Lines[len(s.Lines)-1].Send)
		})
	}
}

func TestBuiltin_WalletCreate(t *testing.T) {
	s := MustBuiltin(WalletCreate)
	require.Len(t, s.Lines, 4)

	sends := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		sends[i] = l.Send
		assert.Equal(t, WaitMarker, l.Wait.Kind(), "line %d", i)
	}
	assert.Equal(t, []string{"y", "aethir wallet create", "aethir wallet export", "aethir exit"}, sends)

	m, err := s.Lines[2].Wait.CompileMarker()
	require.NoError(t, err)
	assert.True(t, m.Match("Current public key:\n*****\n1234567890123456789012345678901234567890\n"))
	assert.False(t, m.Match("Current public key:\n*****\n"))
}

func TestBuiltin_LicenseSummaryMarker(t *testing.T) {
	s := MustBuiltin(LicenseSummary)
	m, err := s.Lines[0].Wait.CompileMarker()
	require.NoError(t, err)
	assert.True(t, m.Match("| 2 | Total Delegated |"))
	assert.True(t, m.Match("No licenses delegated to your burner wallet"))
	assert.False(t, m.Match("Aethir> "))
}

func TestBuiltin_FreshCopies(t *testing.T) {
	a := MustBuiltin(LicenseApprove)
	a.Lines[0].Send = "changed"
	b := MustBuiltin(LicenseApprove)
	assert.Equal(t, "aethir license approve --all", b.Lines[0].Send)
}

func TestBuiltin_Unknown(t *testing.T) {
	_, err := Builtin("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown builtin script "nope"`)
}

func TestResolve(t *testing.T) {
	s, err := Resolve(WalletExport)
	require.NoError(t, err)
	assert.Equal(t, WalletExport, s.Meta.Name)

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  name: custom\nlines:\n  - send: aethir exit\n"), 0o644))
	s, err = Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", s.Meta.Name)
}
