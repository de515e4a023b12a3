// Package extract pulls structured values out of checker CLI transcripts.
//
// Every function here is total: malformed or unexpected text yields a
// "not found" result, never an error or a panic.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Markers printed by the checker CLI before each half of a key pair.
const (
	PrivateKeyMarker = "Current private key:"
	PublicKeyMarker  = "Current public key:"
)

const (
	// privateKeyWindow and publicKeyWindow are how many lines after a
	// marker are searched for the key.
	privateKeyWindow = 14
	publicKeyWindow  = 4

	// A private key line is longer than minPrivateKeyLen; a public key is
	// exactly publicKeyLen characters.
	minPrivateKeyLen = 50
	publicKeyLen     = 40
)

// KeyPair is a burner wallet's key pair as printed by the CLI.
type KeyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

// Valid reports whether both halves are present.
func (k KeyPair) Valid() bool {
	return k.PrivateKey != "" && k.PublicKey != ""
}

// ExtractKeyPair scans the whole transcript for both key markers. When a
// marker occurs more than once, the last occurrence that yields a key
// wins, so a later export overrides earlier create output. It returns ok
// only when both halves were found; a half-filled pair is never returned.
func ExtractKeyPair(text string) (KeyPair, bool) {
	lines := splitLines(text)

	var kp KeyPair
	for i, line := range lines {
		if idx := strings.Index(line, PrivateKeyMarker); idx >= 0 {
			inline := line[idx+len(PrivateKeyMarker):]
			if key, ok := findKey(inline, lines, i, privateKeyWindow, isPrivateKey); ok {
				kp.PrivateKey = key
			}
		}
		if idx := strings.Index(line, PublicKeyMarker); idx >= 0 {
			inline := line[idx+len(PublicKeyMarker):]
			if key, ok := findKey(inline, lines, i, publicKeyWindow, isPublicKey); ok {
				kp.PublicKey = key
			}
		}
	}

	if !kp.Valid() {
		return KeyPair{}, false
	}
	return kp, true
}

// findKey checks the text after the marker on the marker's own line, then
// up to window following lines, for the first acceptable candidate.
func findKey(inline string, lines []string, at, window int, accept func(string) bool) (string, bool) {
	if c := strings.TrimSpace(inline); isCandidate(c) && accept(c) {
		return c, true
	}
	end := at + 1 + window
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[at+1 : end] {
		c := strings.TrimSpace(line)
		if isCandidate(c) && accept(c) {
			return c, true
		}
	}
	return "", false
}

// isCandidate rejects blank lines, marker lines and decoration.
func isCandidate(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, PrivateKeyMarker) || strings.Contains(s, PublicKeyMarker) {
		return false
	}
	return !isSeparator(s)
}

func isPrivateKey(s string) bool {
	return len(s) > minPrivateKeyLen
}

func isPublicKey(s string) bool {
	return len(s) == publicKeyLen
}

// isSeparator reports whether s is a run of one repeated punctuation or
// symbol character, such as "*****" or "─────".
func isSeparator(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if !unicode.IsPunct(first) && !unicode.IsSymbol(first) {
		return false
	}
	for _, r := range s[size:] {
		if r != first {
			return false
		}
	}
	return true
}

// splitLines splits on newlines, tolerating CRLF.
func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
