package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"aquacore/internal/infra/persistence/memory"
	"aquacore/internal/registry"
	"aquacore/internal/template"
	"aquacore/pkg/domain"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	store, err := template.DefaultStore()
	if err != nil {
		t.Fatalf("default templates: %v", err)
	}
	seq := 0
	base := []Option{
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%d", seq) }),
		WithClock(func() time.Time { return time.Date(2026, 7, 15, 8, 0, 0, 0, time.UTC) }),
	}
	return NewService(memory.NewStore(), reg, template.NewEngine(store), append(base, opts...)...)
}

func TestCreateProjectSelectsTemplateAndSeedsSheet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	project, report, err := svc.CreateProject(ctx, CreateProjectInput{
		Name:      "Cannery WWTP",
		Sector:    "industrial",
		Subsector: "food-processing",
		Actor:     "mreyes",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(report.Diagnostics) != 0 {
		t.Fatalf("built-in configuration should be clean: %v", report.Diagnostics)
	}
	if project.TemplateID != "food-processing" {
		t.Fatalf("template %s, want food-processing", project.TemplateID)
	}
	if project.ID == "" || project.CreatedAt.IsZero() {
		t.Fatalf("identity not stamped: %+v", project)
	}

	sheet, _, err := svc.Sheet(ctx, project.ID)
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if len(sheet) == 0 {
		t.Fatal("sheet should be seeded from the template")
	}
	for _, sec := range sheet {
		if sec.ID != "water-quality" {
			continue
		}
		for _, f := range sec.Fields {
			if f.ID == "ph" && f.Validate == nil {
				t.Fatal("loaded sheet should be rehydrated with validation hooks")
			}
		}
	}
}

func TestCreateProjectExplicitTemplate(t *testing.T) {
	svc := newTestService(t)
	project, _, err := svc.CreateProject(context.Background(), CreateProjectInput{
		Name:       "Reuse pilot",
		TemplateID: "municipal-reuse",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.TemplateID != "municipal-reuse" {
		t.Fatalf("explicit template should win, got %s", project.TemplateID)
	}
}

func TestCreateProjectUnknownTemplateDegrades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	project, report, err := svc.CreateProject(ctx, CreateProjectInput{
		Name:       "Misconfigured",
		TemplateID: "ghost",
	})
	if err != nil {
		t.Fatalf("unknown template should degrade, not fail: %v", err)
	}
	if len(report.Diagnostics) != 1 || report.Diagnostics[0].Code != domain.CodeUnknownTemplate {
		t.Fatalf("expected unknown_template diagnostic, got %v", report.Diagnostics)
	}
	sheet, _, err := svc.Sheet(ctx, project.ID)
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if len(sheet) != 0 {
		t.Fatalf("expected empty sheet, got %d sections", len(sheet))
	}
}

func TestProjectNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Project(context.Background(), "ghost")
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFieldPersistsAndStamps(t *testing.T) {
	audit := NewMemoryAuditRecorder()
	svc := newTestService(t, WithAuditRecorder(audit))
	ctx := context.Background()
	project, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P", Sector: "industrial"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	field, err := svc.UpdateField(ctx, UpdateFieldInput{
		ProjectID: project.ID,
		SectionID: "water-quality",
		FieldID:   "ph",
		Value:     7.4,
		Notes:     "composite sample",
		Actor:     "mreyes",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if field.Value != 7.4 || field.Source != domain.SourceManual || field.Notes != "composite sample" {
		t.Fatalf("field not updated: %+v", field)
	}
	if field.LastUpdatedAt == nil || field.LastUpdatedBy != "mreyes" {
		t.Fatalf("audit stamps missing: %+v", field)
	}

	sheet, _, err := svc.Sheet(ctx, project.ID)
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	var persisted *domain.TableField
	for si := range sheet {
		for fi := range sheet[si].Fields {
			if sheet[si].Fields[fi].ID == "ph" {
				persisted = &sheet[si].Fields[fi]
			}
		}
	}
	if persisted == nil || persisted.Value != 7.4 {
		t.Fatalf("update not persisted: %+v", persisted)
	}

	entries := audit.Entries()
	last := entries[len(entries)-1]
	if last.Operation != "update_field" || last.FieldID != "ph" || last.Actor != "mreyes" {
		t.Fatalf("audit entry malformed: %+v", last)
	}
}

func TestUpdateFieldValidationGate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	project, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P", Sector: "industrial"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.UpdateField(ctx, UpdateFieldInput{
		ProjectID: project.ID,
		SectionID: "water-quality",
		FieldID:   "ph",
		Value:     42.0,
	})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The stored sheet must be untouched by the rejected write.
	sheet, _, _ := svc.Sheet(ctx, project.ID)
	for _, sec := range sheet {
		for _, f := range sec.Fields {
			if f.ID == "ph" && f.Value != nil {
				t.Fatalf("rejected write leaked into storage: %v", f.Value)
			}
		}
	}
}

func TestUpdateFieldUnknownTarget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	project, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P", Sector: "industrial"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var nf domain.ErrNotFound
	if _, err := svc.UpdateField(ctx, UpdateFieldInput{
		ProjectID: project.ID, SectionID: "water-quality", FieldID: "no-such-field", Value: 1.0,
	}); !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound for field, got %v", err)
	}
	if _, err := svc.UpdateField(ctx, UpdateFieldInput{
		ProjectID: "ghost", SectionID: "s", FieldID: "f", Value: 1.0,
	}); !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound for sheet, got %v", err)
	}
}

func TestAddCustomFieldGatedBySection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	project, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P", Sector: "industrial"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	custom := domain.TableField{ID: "target-bod", Label: "Target BOD", Type: domain.FieldTypeNumber}
	if err := svc.AddCustomField(ctx, project.ID, "treatment-objectives", custom, "mreyes"); err != nil {
		t.Fatalf("add to open section: %v", err)
	}
	if err := svc.AddCustomField(ctx, project.ID, "water-quality", custom, "mreyes"); err == nil {
		t.Fatal("closed section should reject custom fields")
	}
	if err := svc.AddCustomField(ctx, project.ID, "treatment-objectives", custom, "mreyes"); err == nil {
		t.Fatal("duplicate field id should be rejected")
	}

	sheet, _, _ := svc.Sheet(ctx, project.ID)
	found := false
	for _, sec := range sheet {
		if sec.ID != "treatment-objectives" {
			continue
		}
		for _, f := range sec.Fields {
			if f.ID == "target-bod" {
				found = true
				if f.LastUpdatedBy != "mreyes" || f.Source != domain.SourceManual {
					t.Fatalf("custom field provenance missing: %+v", f)
				}
			}
		}
	}
	if !found {
		t.Fatal("custom field should survive a load and rehydration")
	}
}

func TestImportSuggestions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	project, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P", Sector: "industrial", Subsector: "food-processing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Give ph a user value first; the suggestion must not displace it.
	if _, err := svc.UpdateField(ctx, UpdateFieldInput{
		ProjectID: project.ID, SectionID: "water-quality", FieldID: "ph", Value: 6.8, Actor: "mreyes",
	}); err != nil {
		t.Fatalf("seed ph: %v", err)
	}

	touched, err := svc.ImportSuggestions(ctx, project.ID, map[string]any{
		"ph":  7.0,
		"tss": 850.0,
	}, "proposal-bot")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if touched != 2 {
		t.Fatalf("touched %d fields, want 2", touched)
	}

	sheet, _, _ := svc.Sheet(ctx, project.ID)
	for _, sec := range sheet {
		for _, f := range sec.Fields {
			switch f.ID {
			case "ph":
				if f.Value != 6.8 || f.Source != domain.SourceManual {
					t.Fatalf("suggestion displaced user value: %+v", f)
				}
				if f.SuggestedValue != 7.0 {
					t.Fatalf("suggestion not recorded: %+v", f)
				}
			case "tss":
				if f.Value != 850.0 || f.Source != domain.SourceAI {
					t.Fatalf("empty field should adopt suggestion with AI provenance: %+v", f)
				}
			}
		}
	}
}

func TestDeleteProjectRemovesSheet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	project, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteProject(ctx, project.ID, "mreyes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nf domain.ErrNotFound
	if _, _, err := svc.Sheet(ctx, project.ID); !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListProjects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"A", "B"} {
		if _, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
}

func TestFieldSaverMatchesEditorContract(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	project, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P", Sector: "industrial"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	save := svc.FieldSaver(project.ID, "mreyes")
	if err := save("water-quality", "ph", 7.1, "", "field note"); err != nil {
		t.Fatalf("saver: %v", err)
	}
	sheet, _, _ := svc.Sheet(ctx, project.ID)
	for _, sec := range sheet {
		for _, f := range sec.Fields {
			if f.ID == "ph" {
				if f.Value != 7.1 || f.Notes != "field note" {
					t.Fatalf("saver did not persist: %+v", f)
				}
				return
			}
		}
	}
	t.Fatal("ph field not found")
}

func TestMetricsAndTracingObserveOperations(t *testing.T) {
	metrics := NewExpvarMetricsRecorder()
	svc := newTestService(t, WithMetricsRecorder(metrics))
	ctx := context.Background()
	if _, _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "P"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Project(ctx, "ghost"); err == nil {
		t.Fatal("expected not found")
	}
	if got := metrics.Value("create_project_ok"); got != 1 {
		t.Fatalf("create_project_ok = %d, want 1", got)
	}
	if got := metrics.Value("get_project_error"); got != 1 {
		t.Fatalf("get_project_error = %d, want 1", got)
	}
}
