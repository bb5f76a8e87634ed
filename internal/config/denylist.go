package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Denylist is the YAML form of the static exclusion sets:
//
//	bad_columns:
//	  - f1_footnote_data.footnote_data
//	bad_respondents: [514, 515]
type Denylist struct {
	BadColumns     []string `yaml:"bad_columns"`
	BadRespondents []int    `yaml:"bad_respondents"`
}

// LoadDenylist reads a denylist file.
func LoadDenylist(path string) (*Denylist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read denylist: %w", err)
	}
	var dl Denylist
	if err := yaml.Unmarshal(data, &dl); err != nil {
		return nil, fmt.Errorf("parse denylist %s: %w", path, err)
	}
	return &dl, nil
}

// Apply merges the denylist into cfg. Entries already present are not repeated.
func (d *Denylist) Apply(cfg *Config) {
	for _, c := range d.BadColumns {
		if !slices.Contains(cfg.Clone.BadColumns, c) {
			cfg.Clone.BadColumns = append(cfg.Clone.BadColumns, c)
		}
	}
	for _, r := range d.BadRespondents {
		if !slices.Contains(cfg.Extract.BadRespondents, r) {
			cfg.Extract.BadRespondents = append(cfg.Extract.BadRespondents, r)
		}
	}
	slices.Sort(cfg.Extract.BadRespondents)
}
