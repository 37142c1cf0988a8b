package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"aquacore/internal/blob"
	"aquacore/pkg/domain"
)

// ExportFormat selects the serialization used by ExportSheet.
type ExportFormat string

const (
	// ExportJSON writes the rehydrated sheet as indented JSON.
	ExportJSON ExportFormat = "json"
	// ExportCSV writes one row per field with section context.
	ExportCSV ExportFormat = "csv"
)

// ExportSheet renders a project's sheet in the requested format and stores
// the artifact in the configured blob store. It returns the stored object's
// key.
func (s *Service) ExportSheet(ctx context.Context, projectID string, format ExportFormat) (string, error) {
	ctx, done := s.instrument(ctx, "export_sheet")
	var err error
	defer func() { done(err) }()

	if s.blobs == nil {
		err = fmt.Errorf("no artifact store configured")
		return "", err
	}
	sections, _, err := s.Sheet(ctx, projectID)
	if err != nil {
		return "", err
	}

	var payload []byte
	var contentType string
	switch format {
	case ExportJSON:
		payload, err = json.MarshalIndent(sections, "", "  ")
		if err != nil {
			return "", err
		}
		contentType = "application/json"
	case ExportCSV:
		payload, err = encodeSheetCSV(sections)
		if err != nil {
			return "", err
		}
		contentType = "text/csv"
	default:
		err = fmt.Errorf("unsupported export format %q", format)
		return "", err
	}

	key := fmt.Sprintf("exports/%s/%s.%s", projectID, s.newID(), format)
	_, err = s.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"project_id": projectID},
	})
	if err != nil {
		return "", fmt.Errorf("store export: %w", err)
	}
	s.recordAudit(ctx, AuditEntry{
		Operation: "export_sheet",
		ProjectID: projectID,
		Detail:    map[string]any{"key": key, "format": string(format)},
	})
	return key, nil
}

func encodeSheetCSV(sections []domain.TableSection) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"section_id", "section_title", "field_id", "label", "value", "unit", "source", "notes"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, section := range sections {
		for _, field := range section.Fields {
			row := []string{
				section.ID,
				section.Title,
				field.ID,
				field.Label,
				formatCSVValue(field.Value),
				field.Unit,
				string(field.Source),
				field.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCSVValue(v any) string {
	if v == nil {
		return ""
	}
	switch tv := v.(type) {
	case string:
		return tv
	case []string:
		out, _ := json.Marshal(tv)
		return string(out)
	default:
		return fmt.Sprint(tv)
	}
}
