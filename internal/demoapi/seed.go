package demoapi

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedData decodes the bundled demo dataset.
func SeedData() (map[string][]map[string]any, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed decodes a YAML document mapping table names to row lists.
func ParseSeed(data []byte) (map[string][]map[string]any, error) {
	var out map[string][]map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return out, nil
}

// OpenSeeded opens a store at path loaded with the bundled dataset.
func OpenSeeded(ctx context.Context, path string) (*Store, error) {
	data, err := SeedData()
	if err != nil {
		return nil, err
	}
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := s.Seed(ctx, data); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
