package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/download"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
)

type fakeFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, req download.Request) (download.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return download.Result{}, f.err
	}
	if err := os.WriteFile(req.Destination, []byte("7z-bytes"), helpers.FileMod); err != nil {
		return download.Result{}, err
	}
	return download.Result{Path: req.Destination, Bytes: 8}, nil
}

type fakeExtractor struct {
	calls atomic.Int32
	files map[string]string
}

func (e *fakeExtractor) extract(_ string, dst string) error {
	e.calls.Add(1)
	time.Sleep(10 * time.Millisecond)
	for name, content := range e.files {
		path := filepath.Join(dst, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), helpers.DirMod); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), helpers.FileMod); err != nil {
			return err
		}
	}
	return nil
}

func newTestManager(t *testing.T, root string, fetcher Fetcher, ex *fakeExtractor, sink output.Sink) *Manager {
	t.Helper()
	return NewManager(Paths{
		DownloadsDir: filepath.Join(root, helpers.LayoutDownloads),
		CacheDir:     filepath.Join(root, helpers.LayoutCache),
		ResourceDir:  filepath.Join(root, "resources"),
		PackURL:      "https://buildbot.example/RetroArch_cores.7z",
	}, fetcher, sink, WithExtractor(ex.extract))
}

func TestPreparePackAtMostOnceConcurrent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	fetcher := &fakeFetcher{}
	ex := &fakeExtractor{files: map[string]string{"cores/nestopia_libretro.so": "core"}}
	m := newTestManager(t, root, fetcher, ex, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Go(func() {
			if _, err := m.PreparePack(context.Background()); err != nil {
				errs <- err
			}
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("PreparePack error: %v", err)
	}
	if got := ex.calls.Load(); got != 1 {
		t.Fatalf("expected 1 extraction, got %d", got)
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Fatalf("expected 1 download, got %d", got)
	}

	data, err := os.ReadFile(filepath.Join(m.PackDir(), helpers.PackMarker))
	if err != nil || string(data) != helpers.PackMarkerContent {
		t.Fatalf("unexpected marker %q: %v", data, err)
	}
}

func TestPreparePackSequentialAndRestart(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	fetcher := &fakeFetcher{}
	ex := &fakeExtractor{files: map[string]string{"a.so": "a"}}
	m := newTestManager(t, root, fetcher, ex, nil)

	for range 3 {
		if _, err := m.PreparePack(context.Background()); err != nil {
			t.Fatalf("PreparePack error: %v", err)
		}
	}
	restarted := newTestManager(t, root, fetcher, ex, nil)
	if !restarted.IsReady() {
		t.Fatalf("expected marker to survive restart")
	}
	if _, err := restarted.PreparePack(context.Background()); err != nil {
		t.Fatalf("PreparePack error: %v", err)
	}
	if got := ex.calls.Load(); got != 1 {
		t.Fatalf("expected 1 extraction, got %d", got)
	}
}

func TestPreparePackReusesDownloadedArchive(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	fetcher := &fakeFetcher{}
	ex := &fakeExtractor{}
	m := newTestManager(t, root, fetcher, ex, nil)

	if _, err := m.PreparePack(context.Background()); err != nil {
		t.Fatalf("PreparePack error: %v", err)
	}
	if err := m.Clear(false); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if m.IsReady() {
		t.Fatalf("expected cache to be cleared")
	}
	if _, err := m.PreparePack(context.Background()); err != nil {
		t.Fatalf("PreparePack error: %v", err)
	}
	if fetcher.calls.Load() != 1 || ex.calls.Load() != 2 {
		t.Fatalf("expected 1 download and 2 extractions, got %d and %d", fetcher.calls.Load(), ex.calls.Load())
	}
}

func TestPreparePackDownloadFailure(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	fetcher := &fakeFetcher{err: helpers.ErrNetwork}
	ex := &fakeExtractor{}
	m := newTestManager(t, root, fetcher, ex, nil)

	_, err := m.PreparePack(context.Background())
	if !errors.Is(err, helpers.ErrPackPreparationFailed) || !errors.Is(err, helpers.ErrNetwork) {
		t.Fatalf("expected pack preparation network error, got %v", err)
	}
	if m.IsReady() || ex.calls.Load() != 0 {
		t.Fatalf("nothing should be extracted after a failed download")
	}
	if m.Downloads().Has(helpers.PackArchive) {
		t.Fatalf("failed download must not be committed")
	}
	entries, _ := os.ReadDir(m.Downloads().Dir())
	if len(entries) != 0 {
		t.Fatalf("expected staging file cleanup, found %d entries", len(entries))
	}
}

func TestPreparePackEmitsStages(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var stages []output.Stage
	sink := output.SinkFunc(func(ev output.Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Key != output.KeyCoresPack {
			t.Errorf("unexpected key %q", ev.Key)
		}
		stages = append(stages, ev.Stage)
	})
	m := newTestManager(t, t.TempDir(), &fakeFetcher{}, &fakeExtractor{}, sink)
	if _, err := m.PreparePack(context.Background()); err != nil {
		t.Fatalf("PreparePack error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(stages) == 0 || stages[0] != output.StageDownloadingCores || stages[len(stages)-1] != output.StageExtractingCores {
		t.Fatalf("unexpected stages: %v", stages)
	}
}

func TestFindArtifact(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	ex := &fakeExtractor{files: map[string]string{
		"RetroArch-Win64/cores/Snes9x_Libretro.DLL": "pack",
		"RetroArch-Win64/cores/gambatte_libretro.dll": "pack",
	}}
	m := newTestManager(t, root, &fakeFetcher{}, ex, nil)
	if _, err := m.PreparePack(context.Background()); err != nil {
		t.Fatalf("PreparePack error: %v", err)
	}
	resource := filepath.Join(root, "resources", "cores", "stella_libretro.dll")
	if err := os.MkdirAll(filepath.Dir(resource), helpers.DirMod); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(resource, []byte("res"), helpers.FileMod); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{name: "case insensitive", names: []string{"snes9x_libretro.dll"}, want: "pack"},
		{name: "alternate", names: []string{"missing_libretro.dll", "gambatte_libretro.dll"}, want: "pack"},
		{name: "resource dir", names: []string{"stella_libretro.dll"}, want: "res"},
		{name: "none", names: []string{"nope_libretro.dll"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path, ok := m.FindArtifact(tt.names...)
			if tt.want == "" {
				if ok {
					t.Fatalf("expected no match, got %s", path)
				}
				return
			}
			if !ok {
				t.Fatalf("expected match for %v", tt.names)
			}
			data, err := os.ReadFile(path)
			if err != nil || string(data) != tt.want {
				t.Fatalf("unexpected match %s: %q %v", path, data, err)
			}
		})
	}
}

func TestClearWithDownloads(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	m := newTestManager(t, root, &fakeFetcher{}, &fakeExtractor{}, nil)
	if _, err := m.PreparePack(context.Background()); err != nil {
		t.Fatalf("PreparePack error: %v", err)
	}
	stale := filepath.Join(m.Downloads().Dir(), ".download-123-game.zip")
	if err := os.WriteFile(stale, []byte("x"), helpers.FileMod); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.Clear(true); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if helpers.PathExists(m.ArchivePath()) || helpers.PathExists(stale) || helpers.PathExists(m.PackDir()) {
		t.Fatalf("expected pack, archive and stale downloads to be removed")
	}
}

func TestPreparePackCreatesPackDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	m := newTestManager(t, root, &fakeFetcher{}, &fakeExtractor{}, nil)

	dir, err := m.PreparePack(context.Background())
	if err != nil {
		t.Fatalf("PreparePack error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, helpers.PackMarker))
	if err != nil {
		t.Fatalf("expected marker in %s: %v", dir, err)
	}
	if string(data) != helpers.PackMarkerContent {
		t.Fatalf("unexpected marker content %q", data)
	}
}
