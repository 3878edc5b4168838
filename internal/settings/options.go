// Package settings holds the embedded settings documents: the catalogue of allowed values
// for model default settings and the initial asset defaults. It also reads and writes the
// model's sensitivity configuration file.
package settings

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed options.yaml
var optionsYAML []byte

// Catalogue maps a setting name to its allowed values.
type Catalogue map[string][]string

// Options returns the allowed values of a setting, or nil when it is free-form.
func (c Catalogue) Options(name string) []string {
	return c[name]
}

// Parse decodes a catalogue document.
func Parse(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse option catalogue: %w", err)
	}
	if c == nil {
		c = Catalogue{}
	}
	return c, nil
}

// Default returns the embedded catalogue.
func Default() (Catalogue, error) {
	return Parse(optionsYAML)
}
