// Package editor implements the per-field interaction state machine driving
// technical-sheet edits: viewing/editing/notes/deleting states, working
// copies, validation gating, and optional debounced autosave.
package editor

import (
	"fmt"
	"sync"
	"time"

	"aquacore/pkg/domain"
)

// State identifies the editor's interaction state.
type State string

// Editor states. Notes and deleting are side branches of editing.
const (
	StateViewing  State = "viewing"
	StateEditing  State = "editing"
	StateNotes    State = "notes"
	StateDeleting State = "deleting"
)

// SaveFunc is the persistence callback invoked on successful saves. It
// matches the update contract of the persistence collaborator.
type SaveFunc func(sectionID, fieldID string, value any, unit, notes string) error

// DeleteFunc is invoked when a delete is confirmed.
type DeleteFunc func(sectionID, fieldID string) error

// ValidationError reports a rejected save. The editor stays in its editing
// state; the message is what the UI surfaces inline.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// TransitionError reports a method called outside its legal source state.
type TransitionError struct {
	From State
	Op   string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s state", e.Op, e.From)
}

// Option configures an Editor.
type Option func(*Editor)

// WithAutosave enables debounced autosave of value/unit changes while in the
// editing state. A non-positive interval selects the default (300 ms).
func WithAutosave(interval time.Duration) Option {
	return func(ed *Editor) {
		if interval <= 0 {
			interval = DefaultAutosaveInterval
		}
		ed.autosave = interval
	}
}

// WithDelete supplies the callback run when a delete is confirmed.
func WithDelete(fn DeleteFunc) Option {
	return func(ed *Editor) { ed.deleteFn = fn }
}

// WithClock overrides the audit-stamp clock.
func WithClock(now func() time.Time) Option {
	return func(ed *Editor) { ed.now = now }
}

// WithActor records who is editing; stamped into LastUpdatedBy on save.
func WithActor(actor string) Option {
	return func(ed *Editor) { ed.actor = actor }
}

// DefaultAutosaveInterval is the debounce window for autosave mode.
const DefaultAutosaveInterval = 300 * time.Millisecond

// Editor owns one field's interaction state. Concurrent edits to different
// fields are independent; each editor guards only its own slice of data.
type Editor struct {
	mu        sync.Mutex
	sectionID string
	field     domain.TableField // committed source of truth
	state     State

	workingValue any
	workingUnit  string
	workingNotes string
	validation   string

	save     SaveFunc
	deleteFn DeleteFunc
	autosave time.Duration
	debounce debouncer
	saving   bool
	closed   bool

	actor string
	now   func() time.Time
}

// New constructs an editor for the field in the viewing state.
func New(sectionID string, field domain.TableField, save SaveFunc, opts ...Option) *Editor {
	ed := &Editor{
		sectionID: sectionID,
		field:     domain.CloneField(field),
		state:     StateViewing,
		save:      save,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ed)
	}
	return ed
}

// State returns the current interaction state.
func (ed *Editor) State() State {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.state
}

// Field returns a copy of the committed field.
func (ed *Editor) Field() domain.TableField {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return domain.CloneField(ed.field)
}

// ValidationMessage returns the message from the last rejected save, if any.
func (ed *Editor) ValidationMessage() string {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.validation
}

// StartEdit transitions viewing -> editing, seeding working copies from the
// committed field and clearing any stale validation error.
func (ed *Editor) StartEdit() error {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.state != StateViewing {
		return TransitionError{From: ed.state, Op: "start editing"}
	}
	ed.state = StateEditing
	ed.workingValue = ed.field.Value
	ed.workingUnit = ed.field.Unit
	ed.workingNotes = ed.field.Notes
	ed.validation = ""
	return nil
}

// UpdateValue mutates the uncommitted working value.
func (ed *Editor) UpdateValue(value any) error {
	ed.mu.Lock()
	if ed.state != StateEditing {
		defer ed.mu.Unlock()
		return TransitionError{From: ed.state, Op: "update value"}
	}
	ed.workingValue = value
	ed.mu.Unlock()
	ed.scheduleAutosave()
	return nil
}

// UpdateUnit mutates the uncommitted working unit.
func (ed *Editor) UpdateUnit(unit string) error {
	ed.mu.Lock()
	if ed.state != StateEditing {
		defer ed.mu.Unlock()
		return TransitionError{From: ed.state, Op: "update unit"}
	}
	ed.workingUnit = unit
	ed.mu.Unlock()
	ed.scheduleAutosave()
	return nil
}

// OpenNotes transitions editing -> notes.
func (ed *Editor) OpenNotes() error {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.state != StateEditing {
		return TransitionError{From: ed.state, Op: "open notes"}
	}
	ed.state = StateNotes
	return nil
}

// UpdateNotes mutates the uncommitted notes copy from the editing or notes state.
func (ed *Editor) UpdateNotes(notes string) error {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.state != StateEditing && ed.state != StateNotes {
		return TransitionError{From: ed.state, Op: "update notes"}
	}
	ed.workingNotes = notes
	return nil
}

// StartDelete transitions editing -> deleting (confirmation pending).
func (ed *Editor) StartDelete() error {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.state != StateEditing {
		return TransitionError{From: ed.state, Op: "start delete"}
	}
	ed.state = StateDeleting
	return nil
}

// ConfirmDelete runs the delete callback and returns to viewing.
func (ed *Editor) ConfirmDelete() error {
	ed.mu.Lock()
	if ed.state != StateDeleting {
		defer ed.mu.Unlock()
		return TransitionError{From: ed.state, Op: "confirm delete"}
	}
	fn := ed.deleteFn
	sectionID, fieldID := ed.sectionID, ed.field.ID
	ed.mu.Unlock()

	if fn != nil {
		if err := fn(sectionID, fieldID); err != nil {
			return err
		}
	}

	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.state = StateViewing
	ed.debounce.stop()
	return nil
}

// Save validates the working value and, on success, invokes the save callback
// and commits the working copies, returning to viewing. On validation failure
// the editor stays open and the message is retained for the UI.
func (ed *Editor) Save() error {
	ed.mu.Lock()
	if ed.state != StateEditing && ed.state != StateNotes {
		defer ed.mu.Unlock()
		return TransitionError{From: ed.state, Op: "save"}
	}
	probe := domain.CloneField(ed.field)
	value, unit, notes := ed.workingValue, ed.workingUnit, ed.workingNotes
	if ok, msg := domain.ValidateFieldValue(probe, value); !ok {
		ed.validation = msg
		ed.mu.Unlock()
		return ValidationError{Message: msg}
	}
	ed.validation = ""
	sectionID, fieldID := ed.sectionID, ed.field.ID
	ed.mu.Unlock()

	if err := ed.save(sectionID, fieldID, value, unit, notes); err != nil {
		return err
	}

	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.commitLocked(value, unit, notes)
	ed.state = StateViewing
	ed.debounce.stop()
	return nil
}

// Cancel discards working copies and returns to viewing from any branch.
func (ed *Editor) Cancel() error {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.state == StateViewing {
		return TransitionError{From: ed.state, Op: "cancel"}
	}
	ed.state = StateViewing
	ed.workingValue = nil
	ed.workingUnit = ""
	ed.workingNotes = ""
	ed.validation = ""
	ed.debounce.stop()
	return nil
}

// Close cancels pending autosave timers. The editor must not fire callbacks
// after its field instance is torn down.
func (ed *Editor) Close() {
	ed.mu.Lock()
	ed.closed = true
	ed.mu.Unlock()
	ed.debounce.stop()
}

func (ed *Editor) commitLocked(value any, unit, notes string) {
	ed.field.Value = value
	if unit != "" {
		ed.field.Unit = unit
	}
	ed.field.Notes = notes
	ed.field.Source = domain.SourceManual
	ts := ed.now().UTC()
	ed.field.LastUpdatedAt = &ts
	if ed.actor != "" {
		ed.field.LastUpdatedBy = ed.actor
	}
}

// scheduleAutosave resets the debounce timer on every keystroke. The fire
// path persists without leaving the editing state: only explicit user action
// exits edit mode.
func (ed *Editor) scheduleAutosave() {
	ed.mu.Lock()
	if ed.autosave <= 0 || ed.closed || ed.state != StateEditing {
		ed.mu.Unlock()
		return
	}
	interval := ed.autosave
	ed.mu.Unlock()
	ed.debounce.trigger(interval, ed.autosaveFire)
}

func (ed *Editor) autosaveFire() {
	ed.mu.Lock()
	if ed.closed || ed.state != StateEditing || ed.saving {
		ed.mu.Unlock()
		return
	}
	value, unit := ed.workingValue, ed.workingUnit
	notes := ed.workingNotes
	if valuesEqual(value, ed.field.Value) && unit == ed.field.Unit {
		ed.mu.Unlock()
		return
	}
	probe := domain.CloneField(ed.field)
	if ok, _ := domain.ValidateFieldValue(probe, value); !ok {
		ed.mu.Unlock()
		return
	}
	ed.saving = true
	sectionID, fieldID := ed.sectionID, ed.field.ID
	ed.mu.Unlock()

	err := ed.save(sectionID, fieldID, value, unit, notes)

	ed.mu.Lock()
	ed.saving = false
	if err == nil && !ed.closed {
		ed.commitLocked(value, unit, notes)
	}
	ed.mu.Unlock()
}
