package domain

// SectionOperation declares how a template's section entry combines with the
// same section id inherited from ancestor templates.
type SectionOperation string

// Section merge operations applied in chain order.
const (
	// OpExtend appends fields and layers overrides onto the inherited section.
	OpExtend SectionOperation = "extend"
	// OpReplace supersedes the inherited section wholesale.
	OpReplace SectionOperation = "replace"
	// OpRemove drops the section id from the accumulated configuration.
	OpRemove SectionOperation = "remove"
)

// FieldOverride is a partial, per-section override of a catalog parameter.
// Zero-valued properties leave the inherited or catalog value untouched.
type FieldOverride struct {
	DefaultValue any        `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Importance   Importance `json:"importance,omitempty" yaml:"importance,omitempty"`
	Required     *bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder  string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// SectionConfig declares one section operation inside a template. Section ids
// are stable across the inheritance chain; metadata is only consulted when the
// entry introduces or replaces the section, or overrides inherited values
// field-by-field under OpExtend.
type SectionConfig struct {
	ID                string                   `json:"id" yaml:"id"`
	Operation         SectionOperation         `json:"operation,omitempty" yaml:"operation,omitempty"`
	Title             string                   `json:"title,omitempty" yaml:"title,omitempty"`
	Description       string                   `json:"description,omitempty" yaml:"description,omitempty"`
	AllowCustomFields *bool                    `json:"allow_custom_fields,omitempty" yaml:"allow_custom_fields,omitempty"`
	AddFields         []string                 `json:"add_fields,omitempty" yaml:"add_fields,omitempty"`
	RemoveFields      []string                 `json:"remove_fields,omitempty" yaml:"remove_fields,omitempty"`
	FieldOverrides    map[string]FieldOverride `json:"field_overrides,omitempty" yaml:"field_overrides,omitempty"`
}

// TemplateConfig is a named, inheritable recipe describing which parameters
// appear in which sections for a class of project. Extends points at the
// parent template id; the extends graph must be acyclic.
type TemplateConfig struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Extends   string          `json:"extends,omitempty" yaml:"extends,omitempty"`
	Sector    string          `json:"sector,omitempty" yaml:"sector,omitempty"`
	Subsector string          `json:"subsector,omitempty" yaml:"subsector,omitempty"`
	Sections  []SectionConfig `json:"sections" yaml:"sections"`
}

// CloneTemplate returns a deep copy of the template configuration.
func CloneTemplate(t TemplateConfig) TemplateConfig {
	out := t
	out.Sections = make([]SectionConfig, len(t.Sections))
	for i, s := range t.Sections {
		out.Sections[i] = CloneSectionConfig(s)
	}
	return out
}

// CloneSectionConfig returns a deep copy of a section configuration.
func CloneSectionConfig(s SectionConfig) SectionConfig {
	out := s
	out.AddFields = cloneStrings(s.AddFields)
	out.RemoveFields = cloneStrings(s.RemoveFields)
	if s.AllowCustomFields != nil {
		b := *s.AllowCustomFields
		out.AllowCustomFields = &b
	}
	if s.FieldOverrides != nil {
		out.FieldOverrides = make(map[string]FieldOverride, len(s.FieldOverrides))
		for id, ov := range s.FieldOverrides {
			out.FieldOverrides[id] = CloneFieldOverride(ov)
		}
	}
	return out
}

// CloneFieldOverride returns a copy of the override with pointer state detached.
func CloneFieldOverride(ov FieldOverride) FieldOverride {
	out := ov
	if ov.Required != nil {
		b := *ov.Required
		out.Required = &b
	}
	out.DefaultValue = cloneValue(ov.DefaultValue)
	return out
}
