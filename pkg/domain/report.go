package domain

import "fmt"

// Severity captures how a diagnostic affects the operation that produced it.
type Severity string

// Diagnostic severities determine CI behavior and logging.
const (
	// SeverityBlock fails catalog validation (CI contexts).
	SeverityBlock Severity = "block"
	// SeverityWarn flags a configuration bug to fix without failing the operation.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// DiagnosticCode identifies a class of configuration-integrity issue.
type DiagnosticCode string

// Diagnostic codes emitted by resolution, materialization, and rehydration.
const (
	// CodeUnknownTemplate reports a template id with no configuration.
	CodeUnknownTemplate DiagnosticCode = "unknown_template"
	// CodeCircularInheritance reports an extends cycle; resolution proceeds
	// with the partial chain gathered before the repeat.
	CodeCircularInheritance DiagnosticCode = "circular_inheritance"
	// CodeUnknownParameter reports a field id absent from the catalog during
	// materialization; the field is skipped.
	CodeUnknownParameter DiagnosticCode = "unknown_parameter"
	// CodeUnknownStoredField reports a persisted field whose id no longer
	// resolves; the stored field passes through unchanged.
	CodeUnknownStoredField DiagnosticCode = "unknown_stored_field"
)

// Diagnostic reports a single configuration-integrity finding. These indicate
// bugs to fix before release, not expected runtime conditions.
type Diagnostic struct {
	Code       DiagnosticCode `json:"code"`
	Severity   Severity       `json:"severity"`
	Message    string         `json:"message"`
	TemplateID string         `json:"template_id,omitempty"`
	SectionID  string         `json:"section_id,omitempty"`
	FieldID    string         `json:"field_id,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Code, d.Message)
}

// Report aggregates diagnostics from resolution and rehydration passes.
type Report struct {
	Diagnostics []Diagnostic
}

// Add appends a diagnostic to the report.
func (r *Report) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Merge appends diagnostics from another report.
func (r *Report) Merge(other Report) {
	if len(other.Diagnostics) == 0 {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// HasBlocking returns true if the report contains blocking diagnostics.
func (r Report) HasBlocking() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityBlock {
			return true
		}
	}
	return false
}
