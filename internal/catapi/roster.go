package catapi

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

// Breed is a Cat API breed id with its display name.
type Breed struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RosterEntry is the name and description given to one seeded cat.
type RosterEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Roster is the seed data for the cats collection.
type Roster struct {
	Breeds []Breed       `yaml:"breeds"`
	Cats   []RosterEntry `yaml:"cats"`
}

// DefaultRoster parses the embedded roster.
func DefaultRoster() (*Roster, error) {
	return parseRoster(defaultRoster)
}

// LoadRoster reads a roster YAML file from path.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file %s: %w", path, err)
	}
	return parseRoster(data)
}

func parseRoster(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if len(r.Breeds) == 0 {
		return nil, errors.New("roster has no breeds")
	}
	if len(r.Cats) == 0 {
		return nil, errors.New("roster has no cats")
	}
	return &r, nil
}
