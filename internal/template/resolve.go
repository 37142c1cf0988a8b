package template

import (
	"fmt"

	"aquacore/pkg/domain"
)

// Library is the parameter lookup surface the engine joins field ids against.
// registry.Registry satisfies it; tests inject fixture catalogs.
type Library interface {
	Get(id string) (domain.ParameterDefinition, bool)
}

// Engine resolves template inheritance chains into materialized sections.
// It is stateless beyond the read-only store and safe to call repeatedly.
type Engine struct {
	templates *Store
}

// NewEngine constructs an engine over the supplied template store.
func NewEngine(store *Store) *Engine {
	return &Engine{templates: store}
}

// Templates exposes the backing store.
func (e *Engine) Templates() *Store { return e.templates }

// ResolveChain follows extends pointers upward from id and returns the chain
// ordered ultimate ancestor first, requested template last. A repeated id is
// reported as circular inheritance and the walk stops with the chain gathered
// so far; an unresolvable parent likewise truncates the chain. An unknown
// requested id yields an empty chain.
func (e *Engine) ResolveChain(id string) ([]domain.TemplateConfig, domain.Report) {
	var report domain.Report
	cfg, ok := e.templates.Get(id)
	if !ok {
		report.Add(domain.Diagnostic{
			Code:       domain.CodeUnknownTemplate,
			Severity:   domain.SeverityWarn,
			Message:    fmt.Sprintf("template %s is not configured", id),
			TemplateID: id,
		})
		return nil, report
	}

	// Collected most-specific first, reversed before returning.
	chain := []domain.TemplateConfig{cfg}
	visited := map[string]struct{}{cfg.ID: {}}
	for current := cfg; current.Extends != ""; {
		parentID := current.Extends
		if _, seen := visited[parentID]; seen {
			report.Add(domain.Diagnostic{
				Code:       domain.CodeCircularInheritance,
				Severity:   domain.SeverityWarn,
				Message:    fmt.Sprintf("template %s closes an inheritance cycle; resolution stopped at %s", parentID, current.ID),
				TemplateID: parentID,
			})
			break
		}
		parent, ok := e.templates.Get(parentID)
		if !ok {
			report.Add(domain.Diagnostic{
				Code:       domain.CodeUnknownTemplate,
				Severity:   domain.SeverityWarn,
				Message:    fmt.Sprintf("template %s extends unknown template %s", current.ID, parentID),
				TemplateID: parentID,
			})
			break
		}
		visited[parentID] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, report
}

// MergeChain folds a base-first chain into final section configurations.
// Sections keep the order they first appeared in; a section removed and later
// redefined re-enters at the end. Within a section, extend entries append
// fields with first-seen dedup, apply only their own remove list, and layer
// overrides and metadata with later templates winning per property.
func (e *Engine) MergeChain(chain []domain.TemplateConfig) []domain.SectionConfig {
	acc := make(map[string]*domain.SectionConfig)
	var order []string

	for _, tpl := range chain {
		for _, sec := range tpl.Sections {
			switch sec.Operation {
			case domain.OpRemove:
				if _, ok := acc[sec.ID]; ok {
					delete(acc, sec.ID)
					order = deleteString(order, sec.ID)
				}
				continue
			case domain.OpReplace:
				replacement := normalizeSection(sec)
				if _, ok := acc[sec.ID]; !ok {
					order = append(order, sec.ID)
				}
				acc[sec.ID] = &replacement
				continue
			}

			existing, ok := acc[sec.ID]
			if !ok {
				fresh := normalizeSection(sec)
				acc[sec.ID] = &fresh
				order = append(order, sec.ID)
				continue
			}
			extendSection(existing, sec)
		}
	}

	out := make([]domain.SectionConfig, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	return out
}

// normalizeSection prepares a fresh accumulator entry: its own fields after
// dedup and its own remove list, operation reset to extend for later steps.
func normalizeSection(sec domain.SectionConfig) domain.SectionConfig {
	out := domain.CloneSectionConfig(sec)
	out.Operation = domain.OpExtend
	out.AddFields = removeIDs(dedupFirstSeen(out.AddFields), sec.RemoveFields)
	out.RemoveFields = nil
	return out
}

// extendSection merges a later template's extend entry into the accumulated
// section. The incoming remove list is spent here: ids re-added by yet later
// templates are not filtered by it.
func extendSection(existing *domain.SectionConfig, incoming domain.SectionConfig) {
	merged := append(append([]string{}, existing.AddFields...), incoming.AddFields...)
	existing.AddFields = removeIDs(dedupFirstSeen(merged), incoming.RemoveFields)

	if len(incoming.FieldOverrides) > 0 {
		if existing.FieldOverrides == nil {
			existing.FieldOverrides = make(map[string]domain.FieldOverride, len(incoming.FieldOverrides))
		}
		for id, ov := range incoming.FieldOverrides {
			existing.FieldOverrides[id] = layerOverride(existing.FieldOverrides[id], ov)
		}
	}

	if incoming.Title != "" {
		existing.Title = incoming.Title
	}
	if incoming.Description != "" {
		existing.Description = incoming.Description
	}
	if incoming.AllowCustomFields != nil {
		b := *incoming.AllowCustomFields
		existing.AllowCustomFields = &b
	}
}

// layerOverride merges override properties, later values winning per property.
func layerOverride(base, over domain.FieldOverride) domain.FieldOverride {
	out := domain.CloneFieldOverride(base)
	if over.DefaultValue != nil {
		out.DefaultValue = over.DefaultValue
	}
	if over.Importance != "" {
		out.Importance = over.Importance
	}
	if over.Required != nil {
		b := *over.Required
		out.Required = &b
	}
	if over.Placeholder != "" {
		out.Placeholder = over.Placeholder
	}
	if over.Description != "" {
		out.Description = over.Description
	}
	return out
}

func dedupFirstSeen(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func removeIDs(ids, toRemove []string) []string {
	if len(toRemove) == 0 {
		return ids
	}
	drop := make(map[string]struct{}, len(toRemove))
	for _, id := range toRemove {
		drop[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := drop[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}

func deleteString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
