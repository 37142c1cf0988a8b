// Package template holds the declarative template configurations and the
// resolution engine that materializes them into technical-sheet sections.
package template

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"aquacore/pkg/domain"
)

// BaseTemplateID names the guaranteed fallback template every deployment ships.
const BaseTemplateID = "base"

//go:embed templates.yaml
var templatesYAML []byte

// Store is an immutable collection of template configurations keyed by id.
type Store struct {
	order []string
	byID  map[string]domain.TemplateConfig
}

// NewStore constructs a store from the supplied configurations. Ids must be
// unique; declaration order is preserved for selection tie-breaking.
func NewStore(configs ...domain.TemplateConfig) (*Store, error) {
	byID := make(map[string]domain.TemplateConfig, len(configs))
	order := make([]string, 0, len(configs))
	for _, cfg := range configs {
		if cfg.ID == "" {
			return nil, fmt.Errorf("template with empty id (name %q)", cfg.Name)
		}
		if _, ok := byID[cfg.ID]; ok {
			return nil, fmt.Errorf("duplicate template id %s", cfg.ID)
		}
		byID[cfg.ID] = cfg
		order = append(order, cfg.ID)
	}
	return &Store{order: order, byID: byID}, nil
}

// Get returns the configuration for id, or false when the id is unknown.
func (s *Store) Get(id string) (domain.TemplateConfig, bool) {
	cfg, ok := s.byID[id]
	if !ok {
		return domain.TemplateConfig{}, false
	}
	return domain.CloneTemplate(cfg), true
}

// All returns every configuration in declaration order.
func (s *Store) All() []domain.TemplateConfig {
	out := make([]domain.TemplateConfig, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, domain.CloneTemplate(s.byID[id]))
	}
	return out
}

// Len reports the number of stored templates.
func (s *Store) Len() int { return len(s.order) }

type templatesFile struct {
	Templates []domain.TemplateConfig `yaml:"templates"`
}

// ParseTemplates decodes a YAML template configuration document.
func ParseTemplates(data []byte) ([]domain.TemplateConfig, error) {
	var file templatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return file.Templates, nil
}

// DefaultTemplates returns the built-in template configurations.
func DefaultTemplates() ([]domain.TemplateConfig, error) {
	return ParseTemplates(templatesYAML)
}

// DefaultStore constructs a store over the built-in templates.
func DefaultStore() (*Store, error) {
	configs, err := DefaultTemplates()
	if err != nil {
		return nil, err
	}
	return NewStore(configs...)
}
