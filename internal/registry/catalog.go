package registry

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"aquacore/pkg/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Parameters []domain.ParameterDefinition `yaml:"parameters"`
}

// ParseCatalog decodes a YAML parameter catalog document.
func ParseCatalog(data []byte) ([]domain.ParameterDefinition, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return file.Parameters, nil
}

// DefaultCatalog returns the built-in water-treatment parameter definitions.
func DefaultCatalog() ([]domain.ParameterDefinition, error) {
	return ParseCatalog(catalogYAML)
}

// Default constructs a registry over the built-in catalog.
func Default() (*Registry, error) {
	params, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return New(params)
}
