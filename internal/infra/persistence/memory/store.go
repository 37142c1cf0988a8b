// Package memory provides an in-memory implementation of the sheet store
// used for tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"sync"

	"aquacore/pkg/domain"
)

// Compile-time contract assertion for the domain persistence interface.
var _ domain.SheetStore = (*Store)(nil)

type state struct {
	projects map[string]domain.Project
	sheets   map[string][]domain.TableSection
}

// Snapshot captures a point-in-time clone of the store state. It is the JSON
// payload shape the durable backends persist per bucket.
type Snapshot struct {
	Projects map[string]domain.Project        `json:"projects"`
	Sheets   map[string][]domain.TableSection `json:"sheets"`
}

func newState() state {
	return state{
		projects: make(map[string]domain.Project),
		sheets:   make(map[string][]domain.TableSection),
	}
}

// Store keeps projects and technical sheets in process memory. All reads and
// writes operate on defensive copies so callers can never alias store state.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// PutProject inserts or replaces a project record.
func (s *Store) PutProject(_ context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.projects[project.ID] = project
	return nil
}

// GetProject returns the project with id, reporting whether it exists.
func (s *Store) GetProject(_ context.Context, id string) (domain.Project, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.projects[id]
	return p, ok, nil
}

// ListProjects returns all projects ordered by id.
func (s *Store) ListProjects(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, 0, len(s.state.projects))
	for _, p := range s.state.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteProject removes a project and its sheet.
func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.projects[id]; !ok {
		return domain.ErrNotFound{Entity: domain.EntityProject, ID: id}
	}
	delete(s.state.projects, id)
	delete(s.state.sheets, id)
	return nil
}

// PutSheet stores the full section array for a project. The project must exist.
func (s *Store) PutSheet(_ context.Context, projectID string, sections []domain.TableSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.projects[projectID]; !ok {
		return domain.ErrNotFound{Entity: domain.EntityProject, ID: projectID}
	}
	s.state.sheets[projectID] = domain.CloneSections(sections)
	return nil
}

// GetSheet returns a copy of the project's sheet, reporting whether one is stored.
func (s *Store) GetSheet(_ context.Context, projectID string) ([]domain.TableSection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sections, ok := s.state.sheets[projectID]
	if !ok {
		return nil, false, nil
	}
	return domain.CloneSections(sections), true, nil
}

// ExportState returns a deep-copied snapshot of the full store state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Projects: make(map[string]domain.Project, len(s.state.projects)),
		Sheets:   make(map[string][]domain.TableSection, len(s.state.sheets)),
	}
	for id, p := range s.state.projects {
		snap.Projects[id] = p
	}
	for id, sections := range s.state.sheets {
		snap.Sheets[id] = domain.CloneSections(sections)
	}
	return snap
}

// ImportState replaces the store state with the snapshot contents.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = newState()
	for id, p := range snap.Projects {
		s.state.projects[id] = p
	}
	for id, sections := range snap.Sheets {
		s.state.sheets[id] = domain.CloneSections(sections)
	}
}
