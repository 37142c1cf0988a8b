// Package registry provides the immutable parameter catalog backing
// template materialization and sheet rehydration.
package registry

import (
	"fmt"
	"strings"

	"aquacore/pkg/domain"
)

// Registry is an immutable, injectable catalog of parameter definitions.
// Lookups by id are O(1); iteration preserves catalog order.
type Registry struct {
	params []domain.ParameterDefinition
	byID   map[string]domain.ParameterDefinition
}

// New constructs a registry from the supplied definitions. Ids must be
// unique; validation rules are compiled once and attached as predicates.
func New(params []domain.ParameterDefinition) (*Registry, error) {
	byID := make(map[string]domain.ParameterDefinition, len(params))
	ordered := make([]domain.ParameterDefinition, 0, len(params))
	for _, p := range params {
		if p.ID == "" {
			return nil, fmt.Errorf("parameter with empty id (label %q)", p.Label)
		}
		if _, ok := byID[p.ID]; ok {
			return nil, fmt.Errorf("duplicate parameter id %s", p.ID)
		}
		if p.Rule != "" && p.Validate == nil {
			validate, err := rulePredicate(p.Rule)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: compile rule: %w", p.ID, err)
			}
			p.Validate = validate
		}
		byID[p.ID] = p
		ordered = append(ordered, p)
	}
	return &Registry{params: ordered, byID: byID}, nil
}

// Len reports the number of catalog entries.
func (r *Registry) Len() int { return len(r.params) }

// Get returns the definition for id, or false when the id is unknown.
func (r *Registry) Get(id string) (domain.ParameterDefinition, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// All returns the full catalog in declaration order.
func (r *Registry) All() []domain.ParameterDefinition {
	out := make([]domain.ParameterDefinition, len(r.params))
	copy(out, r.params)
	return out
}

// ForSection returns the definitions targeting sectionID, narrowed by sector
// and subsector when given. A definition with no sector (or subsector)
// restriction matches any sector (or subsector).
func (r *Registry) ForSection(sectionID, sector, subsector string) []domain.ParameterDefinition {
	var out []domain.ParameterDefinition
	for _, p := range r.params {
		if !containsString(p.Sections, sectionID) {
			continue
		}
		if sector != "" && len(p.RelevantSectors) > 0 && !containsString(p.RelevantSectors, sector) {
			continue
		}
		if subsector != "" && len(p.RelevantSubsectors) > 0 && !containsString(p.RelevantSubsectors, subsector) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Search returns definitions whose label, description, or tags contain term,
// case-insensitively. An empty term returns the full catalog.
func (r *Registry) Search(term string) []domain.ParameterDefinition {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return r.All()
	}
	var out []domain.ParameterDefinition
	for _, p := range r.params {
		if strings.Contains(strings.ToLower(p.Label), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			tagsContain(p.Tags, term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterExisting returns the subset of params whose ids are not in existingIDs.
func (r *Registry) FilterExisting(params []domain.ParameterDefinition, existingIDs []string) []domain.ParameterDefinition {
	existing := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}
	var out []domain.ParameterDefinition
	for _, p := range params {
		if _, ok := existing[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func tagsContain(tags []string, term string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
