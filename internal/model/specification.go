package model

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Specification is a conda environment specification file. Dependencies are
// kept loosely typed because conda allows nested maps (e.g. a pip section)
// alongside plain package strings.
type Specification struct {
	Name         string            `yaml:"name" json:"name"`
	Channels     []string          `yaml:"channels,omitempty" json:"channels,omitempty"`
	Dependencies []any             `yaml:"dependencies" json:"dependencies"`
	Variables    map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// ParseSpecification decodes a YAML environment specification.
func ParseSpecification(data []byte) (Specification, error) {
	var spec Specification
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Specification{}, fmt.Errorf("parse specification: %w", err)
	}

	if err := spec.Validate(); err != nil {
		return Specification{}, err
	}

	return spec, nil
}

// Validate checks the fields the server rejects a specification without.
func (s Specification) Validate() error {
	if s.Name == "" {
		return errors.New("specification has no name")
	}

	if len(s.Dependencies) == 0 {
		return fmt.Errorf("specification %q lists no dependencies", s.Name)
	}

	return nil
}
