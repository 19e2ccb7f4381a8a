package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// Seed is the catalogue file format used when no database is configured.
type Seed struct {
	CaseStudies []CaseStudy `yaml:"case_studies"`
	Solutions   []Solution  `yaml:"solutions"`
}

// DefaultSeed returns the catalogue shipped with the binary.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a catalogue from a YAML file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a YAML catalogue.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("content: parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate requires every item to have a unique id and a title.
func (s *Seed) Validate() error {
	seen := make(map[string]struct{}, len(s.CaseStudies)+len(s.Solutions))
	check := func(kind, id, title string) error {
		if id == "" {
			return fmt.Errorf("content: %s %q has no id", kind, title)
		}
		if title == "" {
			return fmt.Errorf("content: %s %s has no title", kind, id)
		}
		if _, dup := seen[kind+"/"+id]; dup {
			return fmt.Errorf("content: duplicate %s id %s", kind, id)
		}
		seen[kind+"/"+id] = struct{}{}
		return nil
	}

	var errs []error
	for _, cs := range s.CaseStudies {
		if err := check("case study", cs.ID, cs.Title); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sol := range s.Solutions {
		if err := check("solution", sol.ID, sol.Title); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
