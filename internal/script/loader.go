package script

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses a script from the given reader with strict field validation.
// Unknown fields in the YAML will cause an error.
func Load(r io.Reader) (*Script, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var s Script
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty script file")
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	return &s, nil
}

// LoadFile loads a script from the given file path.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path) //nolint:gosec // script path is user input
	if err != nil {
		return nil, fmt.Errorf("failed to open script file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}
