package database_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fo-go/internal/database"
	"fo-go/internal/fo"
	"fo-go/internal/testutil"
)

func appendAt(t *testing.T, store fo.Store, kind fo.ActionKind, source string, at time.Time) int64 {
	t.Helper()
	id, err := store.AppendAction(fo.ActionEntry{
		Kind:        kind,
		Source:      source,
		Destination: source + ".moved",
		CreatedAt:   at,
		Metadata:    "batch-1",
	})
	if err != nil {
		t.Fatalf("AppendAction() error = %v", err)
	}
	return id
}

func TestSQLiteStore_Actions(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("append then read round-trips the entry", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		id, err := store.AppendAction(fo.ActionEntry{
			Kind:        fo.KindMove,
			Source:      "/tmp/a.txt",
			Destination: "/tmp/docs/a.txt",
			CreatedAt:   base,
			Metadata:    "batch-1",
		})
		if err != nil {
			t.Fatalf("AppendAction() error = %v", err)
		}
		if id == 0 {
			t.Error("AppendAction() returned id 0")
		}

		entries, err := store.MostRecentActions(0)
		if err != nil {
			t.Fatalf("MostRecentActions() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		e := entries[0]
		if e.ID != id || e.Kind != fo.KindMove || e.Source != "/tmp/a.txt" ||
			e.Destination != "/tmp/docs/a.txt" || e.Metadata != "batch-1" {
			t.Errorf("round-tripped entry = %+v", e)
		}
		if !e.CreatedAt.Equal(base) {
			t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, base)
		}
	})

	t.Run("delete entries have no destination", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		if _, err := store.AppendAction(fo.ActionEntry{
			Kind: fo.KindDelete, Source: "/tmp/x.tmp", CreatedAt: base,
		}); err != nil {
			t.Fatalf("AppendAction() error = %v", err)
		}

		entries, err := store.MostRecentActions(0)
		if err != nil {
			t.Fatalf("MostRecentActions() error = %v", err)
		}
		if entries[0].Destination != "" {
			t.Errorf("Destination = %q, want empty", entries[0].Destination)
		}
	})

	t.Run("orders newest first with id as tie-break", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		first := appendAt(t, store, fo.KindMove, "/a", base)
		second := appendAt(t, store, fo.KindMove, "/b", base.Add(time.Minute))
		// Same timestamp as second: the higher id is newer.
		third := appendAt(t, store, fo.KindMove, "/c", base.Add(time.Minute))

		entries, err := store.MostRecentActions(0)
		if err != nil {
			t.Fatalf("MostRecentActions() error = %v", err)
		}
		got := []int64{entries[0].ID, entries[1].ID, entries[2].ID}
		want := []int64{third, second, first}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
	})

	t.Run("limit returns only the newest entries", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		appendAt(t, store, fo.KindMove, "/a", base)
		newest := appendAt(t, store, fo.KindRename, "/b", base.Add(time.Hour))

		entries, err := store.MostRecentActions(1)
		if err != nil {
			t.Fatalf("MostRecentActions(1) error = %v", err)
		}
		if len(entries) != 1 || entries[0].ID != newest {
			t.Errorf("MostRecentActions(1) = %+v, want only #%d", entries, newest)
		}
	})

	t.Run("delete removes only the named ids", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		a := appendAt(t, store, fo.KindMove, "/a", base)
		b := appendAt(t, store, fo.KindMove, "/b", base)
		keep := appendAt(t, store, fo.KindMove, "/c", base)

		if err := store.DeleteActions([]int64{a, b}); err != nil {
			t.Fatalf("DeleteActions() error = %v", err)
		}

		count, err := store.CountActions()
		if err != nil {
			t.Fatalf("CountActions() error = %v", err)
		}
		if count != 1 {
			t.Fatalf("CountActions() = %d, want 1", count)
		}
		entries, _ := store.MostRecentActions(0)
		if entries[0].ID != keep {
			t.Errorf("surviving entry #%d, want #%d", entries[0].ID, keep)
		}
	})

	t.Run("deleting nothing is a no-op", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		if err := store.DeleteActions(nil); err != nil {
			t.Errorf("DeleteActions(nil) error = %v", err)
		}
	})
}

func TestSQLiteStore_Index(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	newStore := func(t *testing.T) *database.SQLiteStore {
		t.Helper()
		store, ok := testutil.NewTestStore(t).(*database.SQLiteStore)
		if !ok {
			t.Fatal("test store is not a SQLiteStore")
		}
		return store
	}

	t.Run("upsert inserts then refreshes by path", func(t *testing.T) {
		store := newStore(t)

		entry := fo.IndexEntry{
			Path:        "/tmp/a.txt",
			Fingerprint: "aaaa",
			Size:        10,
			ModTime:     base,
			Type:        "text",
			IndexedAt:   base,
		}
		if err := store.UpsertIndexEntry(entry); err != nil {
			t.Fatalf("UpsertIndexEntry() error = %v", err)
		}

		entry.Fingerprint = "bbbb"
		entry.Size = 20
		entry.IndexedAt = base.Add(time.Hour)
		if err := store.UpsertIndexEntry(entry); err != nil {
			t.Fatalf("UpsertIndexEntry() update error = %v", err)
		}

		got, err := store.FindIndexEntry("/tmp/a.txt")
		if err != nil {
			t.Fatalf("FindIndexEntry() error = %v", err)
		}
		if got == nil {
			t.Fatal("FindIndexEntry() = nil, want entry")
		}
		if got.Fingerprint != "bbbb" || got.Size != 20 {
			t.Errorf("entry after upsert = %+v", got)
		}
		if !got.IndexedAt.Equal(base.Add(time.Hour)) {
			t.Errorf("IndexedAt = %v, want %v", got.IndexedAt, base.Add(time.Hour))
		}
	})

	t.Run("unindexed path returns nil without error", func(t *testing.T) {
		store := newStore(t)
		got, err := store.FindIndexEntry("/never/indexed")
		if err != nil {
			t.Fatalf("FindIndexEntry() error = %v", err)
		}
		if got != nil {
			t.Errorf("FindIndexEntry() = %+v, want nil", got)
		}
	})
}

func TestNewSQLiteStore(t *testing.T) {
	t.Run("creates the store file and its parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state", "fo.db")

		store, err := database.NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("NewSQLiteStore() error = %v", err)
		}
		defer store.Close()

		if store.Path() != path {
			t.Errorf("Path() = %q, want %q", store.Path(), path)
		}
		if count, err := store.CountActions(); err != nil || count != 0 {
			t.Errorf("fresh store CountActions() = %d, %v", count, err)
		}
	})

	t.Run("reopening keeps existing entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fo.db")

		store, err := database.NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("NewSQLiteStore() error = %v", err)
		}
		appendAt(t, store, fo.KindMove, "/a", time.Now())
		if err := store.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		reopened, err := database.NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("NewSQLiteStore() reopen error = %v", err)
		}
		defer reopened.Close()

		count, err := reopened.CountActions()
		if err != nil {
			t.Fatalf("CountActions() error = %v", err)
		}
		if count != 1 {
			t.Errorf("CountActions() after reopen = %d, want 1", count)
		}
	})

	t.Run("storage errors wrap the storage sentinel", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		store.Close()

		_, err := store.CountActions()
		if !errors.Is(err, fo.ErrStorage) {
			t.Errorf("CountActions() on closed store error = %v, want ErrStorage", err)
		}
	})
}
