package memory

import (
	"context"
	"errors"
	"testing"

	"aquacore/pkg/domain"
)

func TestProjectLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.PutProject(ctx, domain.Project{Base: domain.Base{ID: "p1"}, Name: "Plant A"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.GetProject(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Name != "Plant A" {
		t.Fatalf("unexpected project %+v", got)
	}
	if _, ok, _ := store.GetProject(ctx, "ghost"); ok {
		t.Fatal("unknown project should not resolve")
	}

	if err := store.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nf domain.ErrNotFound
	if err := store.DeleteProject(ctx, "p1"); !errors.As(err, &nf) {
		t.Fatalf("double delete should return ErrNotFound, got %v", err)
	}
	if nf.Entity != domain.EntityProject {
		t.Fatalf("error should name the entity, got %+v", nf)
	}
}

func TestListProjectsSortedByID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	for _, id := range []string{"p3", "p1", "p2"} {
		if err := store.PutProject(ctx, domain.Project{Base: domain.Base{ID: id}}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	projects, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if projects[i].ID != want {
			t.Fatalf("position %d: got %s, want %s", i, projects[i].ID, want)
		}
	}
}

func TestPutSheetRequiresProject(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	err := store.PutSheet(ctx, "ghost", []domain.TableSection{{ID: "s"}})
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSheetDeletedWithProject(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	if err := store.PutProject(ctx, domain.Project{Base: domain.Base{ID: "p1"}}); err != nil {
		t.Fatalf("put project: %v", err)
	}
	if err := store.PutSheet(ctx, "p1", []domain.TableSection{{ID: "s"}}); err != nil {
		t.Fatalf("put sheet: %v", err)
	}
	if err := store.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.GetSheet(ctx, "p1"); ok {
		t.Fatal("sheet should be cascaded with its project")
	}
}

func TestGetSheetReturnsDetachedCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	if err := store.PutProject(ctx, domain.Project{Base: domain.Base{ID: "p1"}}); err != nil {
		t.Fatalf("put project: %v", err)
	}
	original := []domain.TableSection{{
		ID:     "water-quality",
		Fields: []domain.TableField{{ID: "ph", Value: 7.0}},
	}}
	if err := store.PutSheet(ctx, "p1", original); err != nil {
		t.Fatalf("put sheet: %v", err)
	}

	// Mutating the caller's slice after storing must not reach the store.
	original[0].Fields[0].Value = 1.0
	first, _, _ := store.GetSheet(ctx, "p1")
	if first[0].Fields[0].Value != 7.0 {
		t.Fatal("store aliases the caller's sheet")
	}

	// Mutating a returned sheet must not reach the store either.
	first[0].Fields[0].Value = 2.0
	second, _, _ := store.GetSheet(ctx, "p1")
	if second[0].Fields[0].Value != 7.0 {
		t.Fatal("store hands out aliased sheets")
	}
}

func TestExportImportStateRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	if err := store.PutProject(ctx, domain.Project{Base: domain.Base{ID: "p1"}, Name: "Plant A"}); err != nil {
		t.Fatalf("put project: %v", err)
	}
	if err := store.PutSheet(ctx, "p1", []domain.TableSection{{ID: "s", Fields: []domain.TableField{{ID: "ph"}}}}); err != nil {
		t.Fatalf("put sheet: %v", err)
	}

	snap := store.ExportState()
	restored := NewStore()
	restored.ImportState(snap)

	p, ok, _ := restored.GetProject(ctx, "p1")
	if !ok || p.Name != "Plant A" {
		t.Fatalf("project not restored: ok=%v %+v", ok, p)
	}
	sheet, ok, _ := restored.GetSheet(ctx, "p1")
	if !ok || len(sheet) != 1 || sheet[0].Fields[0].ID != "ph" {
		t.Fatalf("sheet not restored: ok=%v %+v", ok, sheet)
	}
}
