package wallet

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkerctl/checkerctl/internal/extract"
)

var testPair = extract.KeyPair{
	PrivateKey: "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz01234567",
	PublicKey:  "1234567890123456789012345678901234567890",
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallet.json")
	s := NewStore(path)

	require.NoError(t, s.Save(testPair, false))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, testPair, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]string{
		"private_key": testPair.PrivateKey,
		"public_key":  testPair.PublicKey,
	}, raw)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestStore_SaveRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	s := NewStore(path)
	require.NoError(t, s.Save(testPair, false))

	other := extract.KeyPair{PrivateKey: testPair.PrivateKey + "X", PublicKey: testPair.PublicKey}
	err := s.Save(other, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, testPair, got, "original wallet must be untouched")

	require.NoError(t, s.Save(other, true))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestStore_SaveRejectsHalfPair(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "wallet.json"))
	err := s.Save(extract.KeyPair{PublicKey: testPair.PublicKey}, true)
	assert.True(t, errors.Is(err, ErrIncomplete))

	exists, err := s.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_Check(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name         string
		content      string
		write        bool
		wantExists   bool
		wantComplete bool
		wantProblem  string
	}{
		{name: "missing", write: false},
		{
			name:         "complete",
			content:      `{"private_key":"p","public_key":"q"}`,
			write:        true,
			wantExists:   true,
			wantComplete: true,
		},
		{
			name:        "missing public key",
			content:     `{"private_key":"p"}`,
			write:       true,
			wantExists:  true,
			wantProblem: "wallet is missing a key",
		},
		{
			name:        "corrupted",
			content:     `{not json`,
			write:       true,
			wantExists:  true,
			wantProblem: "failed to parse wallet file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if tt.write {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			}

			st, err := NewStore(path).Check()
			require.NoError(t, err)
			assert.Equal(t, path, st.Path)
			assert.Equal(t, tt.wantExists, st.Exists)
			assert.Equal(t, tt.wantComplete, st.Complete)
			if tt.wantProblem != "" {
				assert.Contains(t, st.Problem, tt.wantProblem)
			} else {
				assert.Empty(t, st.Problem)
			}
		})
	}
}

func TestStatus_JSONHasNoKeyMaterial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	s := NewStore(path)
	require.NoError(t, s.Save(testPair, false))

	st, err := s.Check()
	require.NoError(t, err)
	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.NotContains(t, string(data), testPair.PrivateKey)
	assert.NotContains(t, string(data), testPair.PublicKey)
}
