// Package core exposes the service layer tying the parameter registry,
// template engine, and persistence together into project-level operations.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aquacore/internal/blob"
	"aquacore/internal/registry"
	"aquacore/internal/template"
	"aquacore/pkg/domain"
)

// Service exposes higher-level operations over projects and their technical
// sheets. Sheets are rehydrated against the live registry on every load.
type Service struct {
	store    domain.SheetStore
	registry *registry.Registry
	engine   *template.Engine
	blobs    blob.Store

	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer

	now   func() time.Time
	newID func() string
}

// NewService constructs a service backed by the supplied store, registry,
// and template engine.
func NewService(store domain.SheetStore, reg *registry.Registry, engine *template.Engine, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: reg,
		engine:   engine,
		logger:   noopLogger{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the parameter registry the service joins against.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Engine returns the template resolution engine.
func (s *Service) Engine() *template.Engine { return s.engine }

// Store returns the underlying persistence implementation.
func (s *Service) Store() domain.SheetStore { return s.store }

// instrument wraps an operation with tracing and metrics. The returned func
// must be called exactly once with the operation's final error.
func (s *Service) instrument(ctx context.Context, operation string) (context.Context, func(error)) {
	started := s.now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	return ctx, func(err error) {
		if span != nil {
			span.End(err)
		}
		if s.metrics != nil {
			s.metrics.Observe(ctx, operation, err == nil, s.now().Sub(started))
		}
		if err != nil {
			s.logger.Error("operation failed", "operation", operation, "error", err)
		}
	}
}

func (s *Service) recordAudit(ctx context.Context, entry AuditEntry) {
	if s.audit == nil {
		return
	}
	entry.OccurredAt = s.now().UTC()
	s.audit.Record(ctx, entry)
}

// logDiagnostics forwards configuration-integrity findings to the logger.
func (s *Service) logDiagnostics(report domain.Report) {
	for _, d := range report.Diagnostics {
		switch d.Severity {
		case domain.SeverityLog:
			s.logger.Debug("configuration diagnostic", "code", d.Code, "message", d.Message)
		default:
			s.logger.Warn("configuration diagnostic", "code", d.Code, "message", d.Message)
		}
	}
}

// CreateProjectInput carries project-creation parameters. TemplateID is
// optional; when empty the template is selected from sector and subsector.
type CreateProjectInput struct {
	Name       string
	Sector     string
	Subsector  string
	TemplateID string
	Actor      string
}

// CreateProject persists a new project and seeds its technical sheet by
// resolving the selected template. Configuration diagnostics (unknown
// template, unknown parameters) degrade the sheet rather than failing the
// operation; they are returned for the caller and logged.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (domain.Project, domain.Report, error) {
	ctx, done := s.instrument(ctx, "create_project")
	var err error
	defer func() { done(err) }()

	templateID := in.TemplateID
	if templateID == "" {
		templateID = s.engine.SelectForProject(in.Sector, in.Subsector).ID
	}
	sections, report := s.engine.Apply(templateID, s.registry)
	s.logDiagnostics(report)

	now := s.now().UTC()
	project := domain.Project{
		Base:       domain.Base{ID: s.newID(), CreatedAt: now, UpdatedAt: now},
		Name:       in.Name,
		Sector:     in.Sector,
		Subsector:  in.Subsector,
		TemplateID: templateID,
		CreatedBy:  in.Actor,
	}
	if err = s.store.PutProject(ctx, project); err != nil {
		return domain.Project{}, report, fmt.Errorf("persist project: %w", err)
	}
	if err = s.store.PutSheet(ctx, project.ID, sections); err != nil {
		return domain.Project{}, report, fmt.Errorf("persist sheet: %w", err)
	}
	s.recordAudit(ctx, AuditEntry{
		Operation: "create_project",
		ProjectID: project.ID,
		Actor:     in.Actor,
		Detail:    map[string]any{"template_id": templateID, "sections": len(sections)},
	})
	s.logger.Info("project created", "project_id", project.ID, "template_id", templateID)
	return project, report, nil
}

// Project returns a project by id.
func (s *Service) Project(ctx context.Context, id string) (domain.Project, error) {
	ctx, done := s.instrument(ctx, "get_project")
	var err error
	defer func() { done(err) }()

	project, ok, err := s.store.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		err = domain.ErrNotFound{Entity: domain.EntityProject, ID: id}
		return domain.Project{}, err
	}
	return project, nil
}

// ListProjects returns all projects.
func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	ctx, done := s.instrument(ctx, "list_projects")
	projects, err := s.store.ListProjects(ctx)
	done(err)
	return projects, err
}

// DeleteProject removes a project and its sheet.
func (s *Service) DeleteProject(ctx context.Context, id, actor string) error {
	ctx, done := s.instrument(ctx, "delete_project")
	var err error
	defer func() { done(err) }()

	if err = s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, AuditEntry{Operation: "delete_project", ProjectID: id, Actor: actor})
	return nil
}

// Sheet loads a project's technical sheet and rehydrates it against the live
// registry, restoring labels, options, and validation hooks while leaving
// user-entered state untouched.
func (s *Service) Sheet(ctx context.Context, projectID string) ([]domain.TableSection, domain.Report, error) {
	ctx, done := s.instrument(ctx, "get_sheet")
	var err error
	defer func() { done(err) }()

	stored, ok, err := s.store.GetSheet(ctx, projectID)
	if err != nil {
		return nil, domain.Report{}, err
	}
	if !ok {
		err = domain.ErrNotFound{Entity: domain.EntitySheet, ID: projectID}
		return nil, domain.Report{}, err
	}
	sections, report := template.Rehydrate(stored, s.registry)
	s.logDiagnostics(report)
	return sections, report, nil
}

// ValidationError reports a rejected field value.
type ValidationError struct {
	FieldID string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.FieldID, e.Message)
}

// UpdateFieldInput carries a single-field mutation. Unit is applied only when
// non-empty; Notes always replaces the stored notes.
type UpdateFieldInput struct {
	ProjectID string
	SectionID string
	FieldID   string
	Value     any
	Unit      string
	Notes     string
	Actor     string
}

// UpdateField validates and persists one field edit, stamping audit fields.
// Invalid values return a ValidationError and leave the stored sheet intact.
func (s *Service) UpdateField(ctx context.Context, in UpdateFieldInput) (domain.TableField, error) {
	ctx, done := s.instrument(ctx, "update_field")
	var err error
	defer func() { done(err) }()

	stored, ok, err := s.store.GetSheet(ctx, in.ProjectID)
	if err != nil {
		return domain.TableField{}, err
	}
	if !ok {
		err = domain.ErrNotFound{Entity: domain.EntitySheet, ID: in.ProjectID}
		return domain.TableField{}, err
	}
	sections, report := template.Rehydrate(stored, s.registry)
	s.logDiagnostics(report)

	si, fi, found := locateField(sections, in.SectionID, in.FieldID)
	if !found {
		err = domain.ErrNotFound{Entity: domain.EntityField, ID: in.FieldID}
		return domain.TableField{}, err
	}
	field := &sections[si].Fields[fi]
	if ok, msg := domain.ValidateFieldValue(*field, in.Value); !ok {
		err = ValidationError{FieldID: in.FieldID, Message: msg}
		return domain.TableField{}, err
	}

	field.Value = in.Value
	if in.Unit != "" {
		field.Unit = in.Unit
	}
	field.Notes = in.Notes
	field.Source = domain.SourceManual
	ts := s.now().UTC()
	field.LastUpdatedAt = &ts
	field.LastUpdatedBy = in.Actor

	if err = s.store.PutSheet(ctx, in.ProjectID, sections); err != nil {
		return domain.TableField{}, fmt.Errorf("persist sheet: %w", err)
	}
	s.recordAudit(ctx, AuditEntry{
		Operation: "update_field",
		ProjectID: in.ProjectID,
		SectionID: in.SectionID,
		FieldID:   in.FieldID,
		Actor:     in.Actor,
	})
	return domain.CloneField(*field), nil
}

// FieldSaver returns a persistence callback for field editors bound to one
// project. The signature matches the editor save contract.
func (s *Service) FieldSaver(projectID, actor string) func(sectionID, fieldID string, value any, unit, notes string) error {
	return func(sectionID, fieldID string, value any, unit, notes string) error {
		_, err := s.UpdateField(context.Background(), UpdateFieldInput{
			ProjectID: projectID,
			SectionID: sectionID,
			FieldID:   fieldID,
			Value:     value,
			Unit:      unit,
			Notes:     notes,
			Actor:     actor,
		})
		return err
	}
}

// AddCustomField appends a caller-defined field to a section that allows
// custom fields. The field id must not collide with an existing field.
func (s *Service) AddCustomField(ctx context.Context, projectID, sectionID string, field domain.TableField, actor string) error {
	ctx, done := s.instrument(ctx, "add_custom_field")
	var err error
	defer func() { done(err) }()

	stored, ok, err := s.store.GetSheet(ctx, projectID)
	if err != nil {
		return err
	}
	if !ok {
		err = domain.ErrNotFound{Entity: domain.EntitySheet, ID: projectID}
		return err
	}
	si := -1
	for i := range stored {
		if stored[i].ID == sectionID {
			si = i
			break
		}
	}
	if si == -1 {
		err = domain.ErrNotFound{Entity: domain.EntitySection, ID: sectionID}
		return err
	}
	if !stored[si].AllowCustomFields {
		err = fmt.Errorf("section %s does not allow custom fields", sectionID)
		return err
	}
	for _, existing := range stored[si].Fields {
		if existing.ID == field.ID {
			err = fmt.Errorf("field %s already exists in section %s", field.ID, sectionID)
			return err
		}
	}
	ts := s.now().UTC()
	field.LastUpdatedAt = &ts
	field.LastUpdatedBy = actor
	if field.Source == "" {
		field.Source = domain.SourceManual
	}
	stored[si].Fields = append(stored[si].Fields, field)

	if err = s.store.PutSheet(ctx, projectID, stored); err != nil {
		return fmt.Errorf("persist sheet: %w", err)
	}
	s.recordAudit(ctx, AuditEntry{
		Operation: "add_custom_field",
		ProjectID: projectID,
		SectionID: sectionID,
		FieldID:   field.ID,
		Actor:     actor,
	})
	return nil
}

// ImportSuggestions applies proposal-generated values across a sheet. Every
// matched field records the suggestion; fields without a user value also
// adopt it with AI provenance. Returns the number of fields touched.
func (s *Service) ImportSuggestions(ctx context.Context, projectID string, values map[string]any, actor string) (int, error) {
	ctx, done := s.instrument(ctx, "import_suggestions")
	var err error
	defer func() { done(err) }()

	stored, ok, err := s.store.GetSheet(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if !ok {
		err = domain.ErrNotFound{Entity: domain.EntitySheet, ID: projectID}
		return 0, err
	}
	touched := 0
	ts := s.now().UTC()
	for si := range stored {
		for fi := range stored[si].Fields {
			field := &stored[si].Fields[fi]
			suggested, match := values[field.ID]
			if !match {
				continue
			}
			field.SuggestedValue = suggested
			if domain.IsEmptyValue(field.Value) {
				field.Value = suggested
				field.Source = domain.SourceAI
				field.LastUpdatedAt = &ts
				field.LastUpdatedBy = actor
			}
			touched++
		}
	}
	if touched == 0 {
		return 0, nil
	}
	if err = s.store.PutSheet(ctx, projectID, stored); err != nil {
		return 0, fmt.Errorf("persist sheet: %w", err)
	}
	s.recordAudit(ctx, AuditEntry{
		Operation: "import_suggestions",
		ProjectID: projectID,
		Actor:     actor,
		Detail:    map[string]any{"fields": touched},
	})
	return touched, nil
}

func locateField(sections []domain.TableSection, sectionID, fieldID string) (int, int, bool) {
	for si := range sections {
		if sections[si].ID != sectionID {
			continue
		}
		for fi := range sections[si].Fields {
			if sections[si].Fields[fi].ID == fieldID {
				return si, fi, true
			}
		}
	}
	return 0, 0, false
}
