package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"aquacore/internal/infra/persistence/postgres/testutil"
	"aquacore/pkg/domain"
)

func stubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewStore("postgres://stub/aquacore")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, conn
}

func TestNewStoreEnsuresSchema(t *testing.T) {
	_, conn := stubStore(t)
	found := false
	for _, q := range conn.Execs {
		if strings.Contains(q, "CREATE TABLE IF NOT EXISTS state") && strings.Contains(q, "JSONB") {
			found = true
		}
	}
	if !found {
		t.Fatalf("state table DDL not issued: %v", conn.Execs)
	}
}

func TestPutProjectSnapshotsBuckets(t *testing.T) {
	store, conn := stubStore(t)
	ctx := context.Background()
	if err := store.PutProject(ctx, domain.Project{Base: domain.Base{ID: "p1"}, Name: "Plant A"}); err != nil {
		t.Fatalf("put project: %v", err)
	}

	payload, ok := conn.Buckets["projects"]
	if !ok {
		t.Fatalf("projects bucket not written, buckets: %v", conn.Buckets)
	}
	var projects map[string]domain.Project
	if err := json.Unmarshal(payload, &projects); err != nil {
		t.Fatalf("decode bucket: %v", err)
	}
	if projects["p1"].Name != "Plant A" {
		t.Fatalf("bucket payload %+v", projects)
	}
	if _, ok := conn.Buckets["sheets"]; !ok {
		t.Fatal("sheets bucket should be written alongside projects")
	}
}

func TestReloadHydratesFromBuckets(t *testing.T) {
	store, conn := stubStore(t)
	ctx := context.Background()
	if err := store.PutProject(ctx, domain.Project{Base: domain.Base{ID: "p1"}, Name: "Plant A"}); err != nil {
		t.Fatalf("put project: %v", err)
	}
	if err := store.PutSheet(ctx, "p1", []domain.TableSection{{ID: "s", Fields: []domain.TableField{{ID: "ph", Value: 7.1}}}}); err != nil {
		t.Fatalf("put sheet: %v", err)
	}

	// Open a second store against the same stub connection: it hydrates
	// from the buckets the first one wrote.
	db2, conn2 := testutil.NewStubDB()
	conn2.Buckets = conn.Buckets
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db2, nil })
	defer restore()
	reloaded, err := NewStore("postgres://stub/aquacore")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	p, ok, _ := reloaded.GetProject(ctx, "p1")
	if !ok || p.Name != "Plant A" {
		t.Fatalf("project not hydrated: ok=%v %+v", ok, p)
	}
	sheet, ok, _ := reloaded.GetSheet(ctx, "p1")
	if !ok || sheet[0].Fields[0].ID != "ph" {
		t.Fatalf("sheet not hydrated: ok=%v %+v", ok, sheet)
	}
}

func TestNewStoreFailsOnPing(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil {
		t.Fatal("expected ping failure to surface")
	}
}

func TestPersistErrorPropagates(t *testing.T) {
	store, conn := stubStore(t)
	conn.FailBegin = true
	err := store.PutProject(context.Background(), domain.Project{Base: domain.Base{ID: "p1"}})
	if err == nil {
		t.Fatal("expected begin failure to surface")
	}
}

func TestCommitErrorPropagates(t *testing.T) {
	store, conn := stubStore(t)
	conn.FailCommit = true
	err := store.PutProject(context.Background(), domain.Project{Base: domain.Base{ID: "p1"}})
	if err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit failure, got %v", err)
	}
}
