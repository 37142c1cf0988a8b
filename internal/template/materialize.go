package template

import (
	"fmt"

	"aquacore/pkg/domain"
)

// Apply resolves templateID and materializes the merged sections against the
// parameter library. It is deterministic given identical inputs. An unknown
// template id yields an empty slice plus a diagnostic; unknown field ids are
// skipped per-field. Sections that end up with no fields are still emitted
// when they declare title or description metadata.
func (e *Engine) Apply(templateID string, lib Library) ([]domain.TableSection, domain.Report) {
	chain, report := e.ResolveChain(templateID)
	sections := make([]domain.TableSection, 0, len(chain))
	if len(chain) == 0 {
		return sections, report
	}

	for _, cfg := range e.MergeChain(chain) {
		section := domain.TableSection{
			ID:          cfg.ID,
			Title:       cfg.Title,
			Description: cfg.Description,
			Fields:      []domain.TableField{},
		}
		if cfg.AllowCustomFields != nil {
			section.AllowCustomFields = *cfg.AllowCustomFields
		}
		for _, fieldID := range cfg.AddFields {
			def, ok := lib.Get(fieldID)
			if !ok {
				report.Add(domain.Diagnostic{
					Code:       domain.CodeUnknownParameter,
					Severity:   domain.SeverityWarn,
					Message:    fmt.Sprintf("section %s references unknown parameter %s", cfg.ID, fieldID),
					TemplateID: templateID,
					SectionID:  cfg.ID,
					FieldID:    fieldID,
				})
				continue
			}
			section.Fields = append(section.Fields, materializeField(def, cfg.FieldOverrides[fieldID]))
		}
		if len(section.Fields) == 0 && section.Title == "" && section.Description == "" {
			continue
		}
		sections = append(sections, section)
	}
	return sections, report
}

// materializeField joins a catalog definition with a section override into a
// concrete field instance.
func materializeField(def domain.ParameterDefinition, ov domain.FieldOverride) domain.TableField {
	field := domain.TableField{
		ID:                def.ID,
		Label:             def.Label,
		Description:       def.Description,
		Type:              def.Type,
		Unit:              def.DefaultUnit,
		AvailableUnits:    append([]string(nil), def.AvailableUnits...),
		Options:           append([]string(nil), def.Options...),
		Placeholder:       def.Placeholder,
		Importance:        def.Importance,
		Required:          def.Required,
		ValidationMessage: def.ValidationMessage,
		Validate:          def.Validate,
	}
	if def.DefaultValue != nil {
		field.Value = def.DefaultValue
		field.Source = domain.SourceManual
	}
	if ov.DefaultValue != nil {
		field.Value = ov.DefaultValue
		field.Source = domain.SourceManual
	}
	if ov.Importance != "" {
		field.Importance = ov.Importance
	}
	if ov.Required != nil {
		field.Required = *ov.Required
	}
	if ov.Placeholder != "" {
		field.Placeholder = ov.Placeholder
	}
	if ov.Description != "" {
		field.Description = ov.Description
	}
	return field
}
