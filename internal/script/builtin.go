package script

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Names of the scripts shipped with the binary.
const (
	WalletCreate   = "wallet-create"
	WalletExport   = "wallet-export"
	LicenseSummary = "license-summary"
	LicenseApprove = "license-approve"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin loads the embedded script with the given name. Each call returns
// a fresh value the caller may modify.
func Builtin(name string) (*Script, error) {
	f, err := builtinFS.Open(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown builtin script %q", name)
	}
	defer func() { _ = f.Close() }()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("builtin script %q: %w", name, err)
	}
	return s, nil
}

// MustBuiltin is like Builtin but panics on error.
func MustBuiltin(name string) *Script {
	s, err := Builtin(name)
	if err != nil {
		panic(err)
	}
	return s
}

// BuiltinNames lists the embedded scripts in sorted order.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve loads a script from a file when ref looks like a path and from
// the embedded set otherwise.
func Resolve(ref string) (*Script, error) {
	if strings.ContainsRune(ref, '/') || strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") {
		return LoadFile(ref)
	}
	return Builtin(ref)
}
