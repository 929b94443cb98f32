package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	dbs := openTestDBs(t)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	st := buildTestStore(fixed)
	mustSave(t, dbs, st)
	loaded := mustLoad(t, dbs)
	assertMeta(t, loaded)
	assertGames(t, loaded, fixed)
	assertCores(t, loaded)
	assertEntries(t, loaded)
}

func TestSaveReplacesRemovedRecords(t *testing.T) {
	t.Parallel()
	dbs := openTestDBs(t)
	st := buildTestStore(time.Now())
	mustSave(t, dbs, st)

	st.DeleteGame("super-mario-world-us")
	st.ClearCores()
	mustSave(t, dbs, st)

	loaded := mustLoad(t, dbs)
	if len(loaded.GamesSnapshot()) != 0 {
		t.Fatalf("expected removed games to stay removed")
	}
	if _, ok := loaded.GetCore("nestopia"); ok {
		t.Fatalf("expected cleared cores to stay cleared")
	}
}

func TestSaveRejectsNil(t *testing.T) {
	t.Parallel()
	if err := Save(nil, New()); !errors.Is(err, helpers.ErrDbNil) {
		t.Fatalf("expected ErrDbNil, got %v", err)
	}
	if err := Save(openTestDBs(t), nil); !errors.Is(err, helpers.ErrStoreNil) {
		t.Fatalf("expected ErrStoreNil, got %v", err)
	}
}

func TestGamesSnapshotOrder(t *testing.T) {
	t.Parallel()
	st := New()
	st.SetGame(GameRecord{Slug: "c", Platform: "snes", Title: "Zelda"})
	st.SetGame(GameRecord{Slug: "a", Platform: "nes", Title: "Metroid"})
	st.SetGame(GameRecord{Slug: "b", Platform: "snes", Title: "F-Zero"})

	got := st.GamesSnapshot()
	want := []string{"a", "b", "c"}
	for i, rec := range got {
		if rec.Slug != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], rec.Slug)
		}
	}
}

func TestBackendLockIsExclusive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := NewBackend(dir)
	release, err := first.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if _, err := AcquireLock(dir); !errors.Is(err, helpers.ErrAnotherInstanceIsRunning) {
		t.Fatalf("expected ErrAnotherInstanceIsRunning, got %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release error: %v", err)
	}
	again, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	_ = again()
}

func TestBackendRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	backend := NewBackend(dir)
	st, err := backend.LoadStore(ctx)
	if err != nil {
		t.Fatalf("LoadStore error: %v", err)
	}
	st.SetRetroArchVersion("1.21.0")
	if err := backend.SaveStore(ctx, st); err != nil {
		t.Fatalf("SaveStore error: %v", err)
	}
	if err := backend.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened := NewBackend(dir)
	defer func() {
		_ = reopened.Close(ctx)
	}()
	loaded, err := reopened.LoadStore(ctx)
	if err != nil {
		t.Fatalf("LoadStore error: %v", err)
	}
	if got := loaded.MetaSnapshot().RetroArchVersion; got != "1.21.0" {
		t.Fatalf("unexpected version: %q", got)
	}
}

func openTestDBs(t *testing.T) *DBs {
	t.Helper()
	dbs, err := OpenDBs(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDBs error: %v", err)
	}
	t.Cleanup(func() {
		_ = dbs.Close()
	})
	return dbs
}

func buildTestStore(fixed time.Time) *Store {
	st := New()
	st.SetRetroArchVersion("1.21.0")
	st.SetGame(GameRecord{
		Slug:        "super-mario-world-us",
		Title:       "Super Mario World",
		Platform:    "snes",
		AssetPath:   "/games/snes/Super Mario World/extracted/game.sfc",
		CoverPath:   "/games/snes/Super Mario World/Super Mario World.png",
		GameDir:     "/games/snes/Super Mario World",
		InstalledAt: fixed,
	})
	st.SetCore(CoreRecord{
		ID:          "nestopia",
		Filename:    "nestopia_libretro.so",
		Path:        "/root/cores/nestopia_libretro.so",
		Strategy:    "pack",
		InstalledAt: fixed,
	})
	st.SetEntry("entry:abc", EntryCacheEntry{
		Key:       "entry:abc",
		FetchedAt: fixed,
		TTL:       time.Hour,
		Body:      []byte(`{"slug":"abc"}`),
	})
	return st
}

func mustSave(t *testing.T, dbs *DBs, st *Store) {
	t.Helper()
	if err := Save(dbs, st); err != nil {
		t.Fatalf("Save error: %v", err)
	}
}

func mustLoad(t *testing.T, dbs *DBs) *Store {
	t.Helper()
	loaded, err := Load(dbs)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return loaded
}

func assertMeta(t *testing.T, loaded *Store) {
	t.Helper()
	meta := loaded.MetaSnapshot()
	if meta.SchemaVersion != helpers.StoreSnapshotSchemaVersion {
		t.Fatalf("unexpected schema version: %d", meta.SchemaVersion)
	}
	if meta.RetroArchVersion != "1.21.0" {
		t.Fatalf("unexpected retroarch version: %q", meta.RetroArchVersion)
	}
	if meta.LastSnapshot.IsZero() {
		t.Fatalf("expected LastSnapshot to be set")
	}
}

func assertGames(t *testing.T, loaded *Store, fixed time.Time) {
	t.Helper()
	rec, ok := loaded.GetGame("super-mario-world-us")
	if !ok {
		t.Fatalf("expected game record")
	}
	if rec.Title != "Super Mario World" || rec.Platform != "snes" {
		t.Fatalf("unexpected game record: %+v", rec)
	}
	if !rec.InstalledAt.Equal(fixed) {
		t.Fatalf("unexpected installed at: %s", rec.InstalledAt)
	}
}

func assertCores(t *testing.T, loaded *Store) {
	t.Helper()
	rec, ok := loaded.GetCore("nestopia")
	if !ok || rec.Strategy != "pack" {
		t.Fatalf("unexpected core record: %+v (ok=%v)", rec, ok)
	}
}

func assertEntries(t *testing.T, loaded *Store) {
	t.Helper()
	entry, ok := loaded.GetEntry("entry:abc")
	if !ok {
		t.Fatalf("expected cached entry")
	}
	if string(entry.Body) != `{"slug":"abc"}` || entry.TTL != time.Hour {
		t.Fatalf("unexpected cached entry: %+v", entry)
	}
}
