package pattern

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the pattern file used when no -pattern flag is given.
const DefaultFileName = ".ghosthand_pattern.json"

// DefaultPath returns the default pattern file location in the user's
// home directory, falling back to the working directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// Store persists patterns as a JSON array of points.
type Store struct {
	Path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{Path: path}
}

// Exists reports whether a pattern file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads and validates the stored pattern.
func (s *Store) Load() (Pattern, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %v", err)
	}

	var p Pattern
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file %s: %v", s.Path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.normalize()
	return p, nil
}

// Save validates and writes the pattern.
func (s *Store) Save(p Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pattern: %v", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write pattern file: %v", err)
	}
	return nil
}
