package script

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWait_Constructors(t *testing.T) {
	d := FixedDelay(2 * time.Second)
	assert.Equal(t, WaitDelay, d.Kind())
	assert.Equal(t, "delay 2s", d.Describe())
	require.NoError(t, d.Validate())

	m := WaitForMarker("Aethir>", 5*time.Second)
	assert.Equal(t, WaitMarker, m.Kind())
	assert.Equal(t, 5*time.Second, m.Timeout())
	assert.Equal(t, `marker "Aethir>" (max 5s)`, m.Describe())
	require.NoError(t, m.Validate())

	var none Wait
	assert.Equal(t, WaitNone, none.Kind())
	assert.Equal(t, "none", none.Describe())
}

func TestWaitKind_String(t *testing.T) {
	assert.Equal(t, "none", WaitNone.String())
	assert.Equal(t, "delay", WaitDelay.String())
	assert.Equal(t, "marker", WaitMarker.String())
}

func TestScript_ValidateReportsLineIndex(t *testing.T) {
	s := &Script{
		Meta: Meta{Name: "x"},
		Lines: []Line{
			{Send: "ok"},
			{Send: "bad", Wait: Wait{Delay: Duration(time.Second), Marker: "m"}},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Equal(t, "line 1: wait: delay and marker are mutually exclusive", err.Error())
}

func TestDuration_MarshalYAML(t *testing.T) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	require.NoError(t, enc.Encode(Line{Send: "a", Wait: FixedDelay(1500 * time.Millisecond)}))
	require.NoError(t, enc.Close())
	assert.Contains(t, buf.String(), "delay: 1.5s")
	assert.NotContains(t, buf.String(), "max_wait")
}

func TestDryRunReport(t *testing.T) {
	s := MustBuiltin(WalletCreate)
	report := BuildDryRunReport(s)

	assert.Equal(t, WalletCreate, report.ScriptName)
	assert.Equal(t, 4, report.TotalLines)
	assert.Equal(t, 75*time.Second, report.WorstCase)
	assert.Equal(t, 30*time.Second, report.Lines[0].Bound)

	var buf bytes.Buffer
	require.NoError(t, FormatDryRunReport(report, &buf))
	out := buf.String()
	assert.Contains(t, out, "Script: wallet-create")
	assert.Contains(t, out, "Lines: 4 | Worst case: 1m15s")
	assert.Contains(t, out, "aethir wallet create")
	assert.Contains(t, out, `marker "Aethir>" (max 30s)`)
	assert.Contains(t, out, "✓ No validation errors")
}

func TestDryRunReport_EmptySendShown(t *testing.T) {
	s := &Script{Meta: Meta{Name: "enter"}, Lines: []Line{{Send: "", Wait: FixedDelay(time.Second)}}}
	var buf bytes.Buffer
	require.NoError(t, FormatDryRunReport(BuildDryRunReport(s), &buf))
	assert.Contains(t, buf.String(), "⏎")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
