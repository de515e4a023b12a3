//go:build !windows

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/checkerctl/checkerctl/internal/platform"
	"github.com/checkerctl/checkerctl/internal/platform/testutil"
	"github.com/checkerctl/checkerctl/internal/retry"
	"github.com/checkerctl/checkerctl/internal/script"
)

const (
	testPrivateKey = "MIIBVQIBADANBgkqhkiG9w0BAQEFAASCAT8wggE7AgEAAkEAx2sJZ0eKq1bHk9"
	testPublicKey  = "0f3a9c2e41b7d8e5a6c3b2f1e0d9c8b7a6f5e4d3"
)

// fakeChecker imitates the checker CLI: a terms prompt, an "Aethir> "
// prompt without newline, key export, a license table that changes once
// licenses were approved, and the exit message.
var fakeChecker = fmt.Sprintf(`#!/bin/sh
state="$(dirname "$0")/approved"
echo "Press y to continue"
while IFS= read -r line; do
  case "$line" in
    "aethir wallet create"|"aethir wallet export")
      echo "Current private key:"
      echo "*****************"
      echo "%s"
      echo "*****************"
      echo "Current public key:"
      echo "%s"
      ;;
    "aethir license summary")
      if [ -f "$state" ]; then ready=4; pending=0; else ready=3; pending=1; fi
      printf '│ Number │ Status │\n│ %%s │ Ready │\n│ %%s │ Pending │\n│ 4 │ Total Delegated │\n' "$ready" "$pending"
      ;;
    "aethir license approve --all")
      touch "$state"
      echo "License operation approve success"
      ;;
    "aethir exit")
      echo "Wait a moment, the client is exiting"
      exit 0
      ;;
  esac
  printf 'Aethir> '
done
`, testPrivateKey, testPublicKey)

// cliEnv is an isolated checkerctl installation in a temp dir.
type cliEnv struct {
	dir        string
	exe        string
	wallet     string
	configPath string
	platform   *testutil.FakePlatform
	stdin      string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	e := &cliEnv{
		dir:        dir,
		exe:        filepath.Join(dir, "AethirCheckerCLI"),
		wallet:     filepath.Join(dir, "wallet.json"),
		configPath: filepath.Join(dir, "config.toml"),
		platform:   testutil.NewFakePlatform(),
	}
	require.NoError(t, os.WriteFile(e.exe, []byte(fakeChecker), 0o755))
	e.writeConfig(t, "")
	e.platform.Script("echo active")

	origPlatform, origReaper, origTerminal := newPlatform, newReaper, stdinIsTerminal
	newPlatform = func() platform.Platform { return e.platform }
	newReaper = func(*slog.Logger) retry.Reaper { return nil }
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		newPlatform, newReaper, stdinIsTerminal = origPlatform, origReaper, origTerminal
	})

	t.Setenv("HOME", dir)
	for _, k := range []string{"CHECKERCTL_CONFIG", "CHECKERCTL_EXECUTABLE", "CHECKERCTL_WALLET", "CHECKERCTL_COLOR"} {
		t.Setenv(k, "")
	}
	return e
}

// writeConfig writes the test config followed by extra TOML.
func (e *cliEnv) writeConfig(t *testing.T, extra string) {
	t.Helper()
	cfg := fmt.Sprintf(`executable = %q
wallet = %q
install_script = %q
color = "never"

[session]
timeout = "20s"
exit_wait = "5s"

[retry]
attempts = 2
backoff = "10ms"
attempt_timeout = "15s"
settle = "1ms"
%s`, e.exe, e.wallet, filepath.Join(e.dir, "install.sh"), extra)
	require.NoError(t, os.WriteFile(e.configPath, []byte(cfg), 0o600))
}

// run executes checkerctl with args and returns stdout and stderr.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(e.stdin))
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag variable to its default, since cobra
// only assigns flags that appear on the command line.
func resetFlags() {
	configFlag, verboseFlag, executableFlag = "", false, ""
	installScriptFlag = ""
	forceFlag, noStartFlag = false, false
	statusFormatFlag, licensesFormatFlag, validateFormatFlag = "text", "text", "text"
	heartbeatFormatFlag, heartbeatWatchFlag, heartbeatIntervalFlag = "text", false, 0
	heartbeatCountFlag, heartbeatNoApprove = 0, false
	debugScriptFlag, debugDryRunFlag, debugFormatFlag = script.WalletCreate, false, "text"
}
