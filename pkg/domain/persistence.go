package domain

import (
	"context"
	"fmt"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in persistence buckets and errors.
const (
	// EntityProject identifies a project record.
	EntityProject EntityType = "project"
	// EntitySheet identifies a project's technical sheet record.
	EntitySheet EntityType = "sheet"
	// EntitySection identifies a section within a sheet.
	EntitySection EntityType = "section"
	// EntityField identifies a field within a section.
	EntityField EntityType = "field"
)

// Base contains common fields for persistent records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project captures the metadata that drives template selection for a
// technical sheet: which sector and subsector the installation serves.
type Project struct {
	Base
	Name       string `json:"name"`
	Sector     string `json:"sector,omitempty"`
	Subsector  string `json:"subsector,omitempty"`
	TemplateID string `json:"template_id"`
	CreatedBy  string `json:"created_by,omitempty"`
}

// SheetStore is a minimal abstraction over durable backends for projects and
// their technical sheets. Sheets are stored as the JSON shape of
// []TableSection; validation hooks never survive the round trip, so loads
// must pass through rehydration before reaching consumers.
type SheetStore interface {
	PutProject(ctx context.Context, project Project) error
	GetProject(ctx context.Context, id string) (Project, bool, error)
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, id string) error
	PutSheet(ctx context.Context, projectID string, sections []TableSection) error
	GetSheet(ctx context.Context, projectID string) ([]TableSection, bool, error)
}

// ErrNotFound is returned when reference validation fails within store or
// service helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
