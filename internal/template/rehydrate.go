package template

import (
	"fmt"

	"aquacore/pkg/domain"
)

// Rehydrate re-joins persisted sections against the live parameter library.
// Validation hooks, labels, options, and similar catalog metadata cannot
// survive JSON serialization; this rebuilds them while preserving exactly the
// user-entered state: value, source, unit (when the user set one), notes,
// audit stamps, suggested value, and conditional marker. Fields whose id no
// longer resolves pass through unchanged, which keeps legacy and custom
// fields intact across registry revisions. Pure; must run on every
// deserialization boundary.
func Rehydrate(sections []domain.TableSection, lib Library) ([]domain.TableSection, domain.Report) {
	var report domain.Report
	out := make([]domain.TableSection, len(sections))
	for i, section := range sections {
		rehydrated := domain.CloneSection(section)
		for j, stored := range rehydrated.Fields {
			def, ok := lib.Get(stored.ID)
			if !ok {
				report.Add(domain.Diagnostic{
					Code:      domain.CodeUnknownStoredField,
					Severity:  domain.SeverityLog,
					Message:   fmt.Sprintf("stored field %s has no catalog entry; passing through unchanged", stored.ID),
					SectionID: section.ID,
					FieldID:   stored.ID,
				})
				continue
			}
			rehydrated.Fields[j] = rehydrateField(stored, def)
		}
		out[i] = rehydrated
	}
	return out, report
}

func rehydrateField(stored domain.TableField, def domain.ParameterDefinition) domain.TableField {
	field := domain.TableField{
		ID:                stored.ID,
		Label:             def.Label,
		Description:       def.Description,
		Type:              def.Type,
		AvailableUnits:    append([]string(nil), def.AvailableUnits...),
		Options:           append([]string(nil), def.Options...),
		Placeholder:       def.Placeholder,
		Importance:        def.Importance,
		Required:          def.Required,
		ValidationMessage: def.ValidationMessage,
		Validate:          def.Validate,

		Value:          stored.Value,
		Source:         stored.Source,
		Notes:          stored.Notes,
		SuggestedValue: stored.SuggestedValue,
		Conditional:    stored.Conditional,
		LastUpdatedAt:  stored.LastUpdatedAt,
		LastUpdatedBy:  stored.LastUpdatedBy,
	}
	if stored.Unit != "" {
		field.Unit = stored.Unit
	} else {
		field.Unit = def.DefaultUnit
	}
	if stored.Importance != "" {
		field.Importance = stored.Importance
	}
	return field
}
