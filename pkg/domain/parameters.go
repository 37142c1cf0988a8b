// Package domain defines the core value types, template configuration, and
// diagnostic primitives used by aquacore.
package domain

import "time"

// ParameterCategory groups catalog parameters by engineering discipline.
type ParameterCategory string

// Fixed parameter taxonomy used for catalog validation and sheet grouping.
const (
	// CategoryDesign identifies hydraulic and capacity design parameters.
	CategoryDesign ParameterCategory = "design"
	// CategoryPhysical identifies physical water characteristics.
	CategoryPhysical ParameterCategory = "physical"
	// CategoryChemicalInorganic identifies inorganic chemistry parameters.
	CategoryChemicalInorganic ParameterCategory = "chemical-inorganic"
	// CategoryChemicalOrganic identifies organic load parameters.
	CategoryChemicalOrganic ParameterCategory = "chemical-organic"
	// CategoryBacteriological identifies microbiological parameters.
	CategoryBacteriological ParameterCategory = "bacteriological"
	// CategoryOperational identifies plant operation parameters.
	CategoryOperational ParameterCategory = "operational"
	// CategoryRegulatory identifies discharge-permit parameters.
	CategoryRegulatory ParameterCategory = "regulatory"
)

// FieldType identifies the input kind a materialized field renders as.
type FieldType string

// Supported field input kinds.
const (
	FieldTypeText      FieldType = "text"
	FieldTypeNumber    FieldType = "number"
	FieldTypeSelect    FieldType = "select"
	FieldTypeCombobox  FieldType = "combobox"
	FieldTypeUnit      FieldType = "unit"
	FieldTypeTags      FieldType = "tags"
	FieldTypeMultiline FieldType = "multiline-text"
)

// Importance ranks a field's priority tier within a technical sheet.
type Importance string

// Importance tiers used for completion scoring by downstream consumers.
const (
	ImportanceCritical    Importance = "critical"
	ImportanceRecommended Importance = "recommended"
	ImportanceOptional    Importance = "optional"
)

// FieldSource records how a field's current value was produced.
type FieldSource string

// Provenance markers for field values.
const (
	// SourceManual indicates a value entered by an engineer.
	SourceManual FieldSource = "manual"
	// SourceImported indicates a value carried in from an external dataset.
	SourceImported FieldSource = "imported"
	// SourceAI indicates a value produced by proposal generation.
	SourceAI FieldSource = "ai"
)

// ValidateFunc is a pure predicate over a candidate field value. It never
// survives serialization; the registry re-attaches it during rehydration.
type ValidateFunc func(value any) bool

// ParameterDefinition is an immutable catalog entry describing a single
// measurable fact in the water-treatment domain.
type ParameterDefinition struct {
	ID                 string            `json:"id" yaml:"id"`
	Label              string            `json:"label" yaml:"label"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	Category           ParameterCategory `json:"category" yaml:"category"`
	Type               FieldType         `json:"type" yaml:"type"`
	Sections           []string          `json:"sections,omitempty" yaml:"sections,omitempty"`
	DefaultUnit        string            `json:"default_unit,omitempty" yaml:"default_unit,omitempty"`
	AvailableUnits     []string          `json:"available_units,omitempty" yaml:"available_units,omitempty"`
	Options            []string          `json:"options,omitempty" yaml:"options,omitempty"`
	DefaultValue       any               `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	TypicalRange       string            `json:"typical_range,omitempty" yaml:"typical_range,omitempty"`
	Placeholder        string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Tags               []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Importance         Importance        `json:"importance" yaml:"importance"`
	Required           bool              `json:"required" yaml:"required"`
	RelevantSectors    []string          `json:"relevant_sectors,omitempty" yaml:"relevant_sectors,omitempty"`
	RelevantSubsectors []string          `json:"relevant_subsectors,omitempty" yaml:"relevant_subsectors,omitempty"`
	Rule               string            `json:"rule,omitempty" yaml:"rule,omitempty"`
	ValidationMessage  string            `json:"validation_message,omitempty" yaml:"validation_message,omitempty"`
	Validate           ValidateFunc      `json:"-" yaml:"-"`
}

// TableField is the join of a ParameterDefinition with override and
// user-entered state, materialized into a project's technical sheet.
type TableField struct {
	ID                string       `json:"id"`
	Label             string       `json:"label"`
	Description       string       `json:"description,omitempty"`
	Type              FieldType    `json:"type"`
	Value             any          `json:"value,omitempty"`
	Unit              string       `json:"unit,omitempty"`
	AvailableUnits    []string     `json:"available_units,omitempty"`
	Options           []string     `json:"options,omitempty"`
	Placeholder       string       `json:"placeholder,omitempty"`
	Source            FieldSource  `json:"source,omitempty"`
	Importance        Importance   `json:"importance,omitempty"`
	Required          bool         `json:"required"`
	Notes             string       `json:"notes,omitempty"`
	SuggestedValue    any          `json:"suggested_value,omitempty"`
	Conditional       string       `json:"conditional,omitempty"`
	LastUpdatedAt     *time.Time   `json:"last_updated_at,omitempty"`
	LastUpdatedBy     string       `json:"last_updated_by,omitempty"`
	ValidationMessage string       `json:"validation_message,omitempty"`
	Validate          ValidateFunc `json:"-"`
}

// TableSection groups materialized fields within a project's technical sheet.
type TableSection struct {
	ID                string       `json:"id"`
	Title             string       `json:"title,omitempty"`
	Description       string       `json:"description,omitempty"`
	AllowCustomFields bool         `json:"allow_custom_fields,omitempty"`
	Fields            []TableField `json:"fields"`
}

// CloneField returns a deep copy of the field, including slice-valued metadata.
func CloneField(f TableField) TableField {
	out := f
	out.AvailableUnits = cloneStrings(f.AvailableUnits)
	out.Options = cloneStrings(f.Options)
	out.Value = cloneValue(f.Value)
	out.SuggestedValue = cloneValue(f.SuggestedValue)
	if f.LastUpdatedAt != nil {
		ts := *f.LastUpdatedAt
		out.LastUpdatedAt = &ts
	}
	return out
}

// CloneSection returns a deep copy of the section and its fields.
func CloneSection(s TableSection) TableSection {
	out := s
	out.Fields = make([]TableField, len(s.Fields))
	for i, f := range s.Fields {
		out.Fields[i] = CloneField(f)
	}
	return out
}

// CloneSections returns a deep copy of the full sheet.
func CloneSections(sections []TableSection) []TableSection {
	if sections == nil {
		return nil
	}
	out := make([]TableSection, len(sections))
	for i, s := range sections {
		out[i] = CloneSection(s)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// cloneValue copies the slice shapes tag-typed fields carry; scalar values
// are immutable through the JSON boundary and are returned as-is.
func cloneValue(v any) any {
	switch tv := v.(type) {
	case []string:
		return cloneStrings(tv)
	case []any:
		out := make([]any, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}
