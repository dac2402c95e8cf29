// Package item provides the item template catalog consumed by the storage core.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Rarity orders item templates from most to least common.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

// rarityNames maps YAML rarity strings to their ordered values.
var rarityNames = map[string]Rarity{
	"common":    RarityCommon,
	"uncommon":  RarityUncommon,
	"rare":      RarityRare,
	"epic":      RarityEpic,
	"legendary": RarityLegendary,
}

// String returns the lowercase name of the rarity.
func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "common"
	case RarityUncommon:
		return "uncommon"
	case RarityRare:
		return "rare"
	case RarityEpic:
		return "epic"
	case RarityLegendary:
		return "legendary"
	default:
		return fmt.Sprintf("rarity(%d)", int(r))
	}
}

// ParseRarity converts a YAML rarity string to a Rarity.
//
// Postcondition: returns the matching Rarity, or an error for unknown names.
func ParseRarity(s string) (Rarity, error) {
	r, ok := rarityNames[s]
	if !ok {
		return RarityCommon, fmt.Errorf("item: unknown rarity %q", s)
	}
	return r, nil
}

// Template defines the immutable static properties of an item, loaded from YAML.
type Template struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Icon     string `yaml:"icon"`
	Rarity   string `yaml:"rarity"`
	MaxStack int    `yaml:"max_stack"`

	rarity Rarity
}

// RarityValue returns the parsed, ordered rarity of the template.
func (t *Template) RarityValue() Rarity {
	return t.rarity
}

// Validate checks that the Template satisfies its invariants and caches the
// parsed rarity.
//
// Precondition: t is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if t.MaxStack < 1 {
		errs = append(errs, errors.New("MaxStack must be >= 1"))
	}
	if t.Rarity != "" {
		r, err := ParseRarity(t.Rarity)
		if err != nil {
			errs = append(errs, err)
		} else {
			t.rarity = r
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item template validation failed: %v", errs)
	}
	return nil
}

// LoadTemplates reads all *.yaml and *.yml files from dir, parses each as a
// Template, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Templates or the first encountered error.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadTemplates: cannot read directory %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadTemplates: cannot read file %q: %w", path, err)
		}
		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("LoadTemplates: cannot parse file %q: %w", path, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("LoadTemplates: invalid template in %q: %w", path, err)
		}
		templates = append(templates, &t)
	}
	return templates, nil
}
