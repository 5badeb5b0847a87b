package memory

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStore_GetEmpty(t *testing.T) {
	store := setupTestStore(t)

	content, err := store.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if content != "" {
		t.Errorf("expected empty memory, got %q", content)
	}
}

func TestStore_SetAndGet(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Set("El usuario prefiere reuniones por la mañana."); err != nil {
		t.Fatalf("set: %v", err)
	}

	content, err := store.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if content != "El usuario prefiere reuniones por la mañana." {
		t.Errorf("got %q", content)
	}
}

func TestStore_SetReplacesWholesale(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Set("primera versión"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set("segunda versión"); err != nil {
		t.Fatalf("set: %v", err)
	}

	content, err := store.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if content != "segunda versión" {
		t.Errorf("got %q, want the rewrite only", content)
	}
}

func TestStore_UpdatedAt(t *testing.T) {
	store := setupTestStore(t)

	ts, err := store.UpdatedAt()
	if err != nil {
		t.Fatalf("updated at: %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("expected zero time before first write, got %v", ts)
	}

	if err := store.Set("algo"); err != nil {
		t.Fatalf("set: %v", err)
	}
	ts, err = store.UpdatedAt()
	if err != nil {
		t.Fatalf("updated at: %v", err)
	}
	if ts.IsZero() {
		t.Error("expected non-zero time after write")
	}
}
