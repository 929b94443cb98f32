package games

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/greeddj/go-retrokit/internal/retrokit/crocdb"
	"github.com/greeddj/go-retrokit/internal/retrokit/download"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
	"github.com/greeddj/go-retrokit/internal/retrokit/store"
)

type fakeSource map[string]crocdb.Entry

func (s fakeSource) Entry(_ context.Context, slug string) (crocdb.Entry, error) {
	entry, ok := s[slug]
	if !ok {
		return crocdb.Entry{}, helpers.ErrNotFound
	}
	return entry, nil
}

type fakeFetcher map[string][]byte

func (f fakeFetcher) Fetch(_ context.Context, req download.Request) (download.Result, error) {
	body, ok := f[req.URL]
	if !ok {
		return download.Result{}, helpers.ErrNetwork
	}
	if err := os.WriteFile(req.Destination, body, helpers.FileMod); err != nil {
		return download.Result{}, err
	}
	return download.Result{Path: req.Destination, Bytes: int64(len(body))}, nil
}

type fakeCovers struct {
	err error
}

func (c fakeCovers) FetchCover(_ context.Context, _ string, dst string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return dst, os.WriteFile(dst, []byte("png"), helpers.FileMod)
}

type recorder struct {
	mu     sync.Mutex
	events []output.Event
}

func (r *recorder) Emit(ev output.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) stages() []output.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]output.Stage, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Stage)
	}
	return out
}

// mustZip builds a zip with members written in the given order.
func mustZip(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, err := w.Write([]byte("data:" + name)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func smwEntry(filename string) crocdb.Entry {
	return crocdb.Entry{
		Slug:      "smw",
		Title:     "Super Mario World: Deluxe?",
		Platform:  "snes",
		BoxartURL: "https://covers.example/smw.png",
		Links:     []crocdb.Link{{URL: "https://files.example/" + filename, Filename: filename}},
	}
}

func TestInstallArchivePicksAllowListedROM(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	lib := store.New()
	rec := &recorder{}
	p := New(Deps{
		Source:   fakeSource{"smw": smwEntry("Super Mario World (USA).zip")},
		Fetcher:  fakeFetcher{"https://files.example/Super Mario World (USA).zip": mustZip(t, "0readme.txt", "readme.txt", "game.smc")},
		Covers:   fakeCovers{},
		Library:  lib,
		GamesDir: root,
		Sink:     rec,
	})

	desc, err := p.Install(context.Background(), "smw")
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	gameDir := filepath.Join(root, "snes", "Super Mario World_ Deluxe_")
	if desc.GameDir != gameDir {
		t.Fatalf("unexpected game dir %s", desc.GameDir)
	}
	if desc.AssetPath != filepath.Join(gameDir, helpers.GameExtractDir, "game.smc") {
		t.Fatalf("expected game.smc, got %s", desc.AssetPath)
	}
	if desc.CoverPath != filepath.Join(gameDir, "Super Mario World_ Deluxe_.png") {
		t.Fatalf("unexpected cover path %s", desc.CoverPath)
	}

	stored, err := ReadDescriptor(gameDir)
	if err != nil {
		t.Fatalf("ReadDescriptor error: %v", err)
	}
	if stored.AssetPath != desc.AssetPath || stored.Slug != "smw" {
		t.Fatalf("unexpected game.yml: %+v", stored)
	}
	if rec, ok := lib.GetGame("smw"); !ok || rec.AssetPath != desc.AssetPath {
		t.Fatalf("expected library record, got %+v", rec)
	}

	want := []output.Stage{
		output.StageStarting, output.StagePreparing, output.StageDownloading, output.StageExtracting,
		output.StageFindingRom, output.StageRomFound, output.StageDownloadingCover, output.StageCompleted,
	}
	got := rec.stages()
	if len(got) != len(want) {
		t.Fatalf("unexpected stages %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInstallArchiveFallsBackToFirstFile(t *testing.T) {
	t.Parallel()
	p := New(Deps{
		Source:   fakeSource{"smw": smwEntry("smw.zip")},
		Fetcher:  fakeFetcher{"https://files.example/smw.zip": mustZip(t, "b.dat", "a.dat")},
		GamesDir: t.TempDir(),
	})
	desc, err := p.Install(context.Background(), "smw")
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if filepath.Base(desc.AssetPath) != "a.dat" {
		t.Fatalf("expected first file a.dat, got %s", desc.AssetPath)
	}
	if desc.CoverPath != "" {
		t.Fatalf("no cover fetcher configured, got %s", desc.CoverPath)
	}
}

func TestInstallEmptyArchive(t *testing.T) {
	t.Parallel()
	p := New(Deps{
		Source:   fakeSource{"smw": smwEntry("smw.zip")},
		Fetcher:  fakeFetcher{"https://files.example/smw.zip": mustZip(t, "docs/")},
		GamesDir: t.TempDir(),
	})
	if _, err := p.Install(context.Background(), "smw"); !errors.Is(err, helpers.ErrNoRomInArchive) {
		t.Fatalf("expected ErrNoRomInArchive, got %v", err)
	}
}

func TestInstallPlainROM(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	p := New(Deps{
		Source:   fakeSource{"smw": smwEntry("smw.sfc")},
		Fetcher:  fakeFetcher{"https://files.example/smw.sfc": []byte("rom")},
		Covers:   fakeCovers{err: helpers.ErrNetwork},
		GamesDir: t.TempDir(),
		Sink:     rec,
	})
	desc, err := p.Install(context.Background(), "smw")
	if err != nil {
		t.Fatalf("cover failure must not fail the install: %v", err)
	}
	if filepath.Base(desc.AssetPath) != "smw.sfc" || desc.CoverPath != "" {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
	for _, stage := range rec.stages() {
		if stage == output.StageExtracting {
			t.Fatalf("plain ROM must not be extracted")
		}
	}
}

func TestInstallErrors(t *testing.T) {
	t.Parallel()
	noLinks := crocdb.Entry{Slug: "empty", Title: "Empty", Platform: "nes"}
	tests := []struct {
		name string
		slug string
		want error
	}{
		{name: "empty slug", slug: "", want: helpers.ErrEmptySlug},
		{name: "unknown", slug: "ghost", want: helpers.ErrNotFound},
		{name: "no links", slug: "empty", want: helpers.ErrEntryHasNoLinks},
		{name: "download", slug: "smw", want: helpers.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			p := New(Deps{
				Source:   fakeSource{"empty": noLinks, "smw": smwEntry("smw.zip")},
				Fetcher:  fakeFetcher{},
				GamesDir: root,
			})
			if _, err := p.Install(context.Background(), tt.slug); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.slug == "empty" && helpers.PathExists(filepath.Join(root, "nes")) {
				t.Fatalf("no directory should be created for an entry without links")
			}
		})
	}
}

func TestInstallStreamsUnderSlugKey(t *testing.T) {
	t.Parallel()
	payload := mustZip(t, "readme.txt", "game.smc")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	rec := &recorder{}
	entry := smwEntry("smw.zip")
	entry.BoxartURL = ""
	entry.Links[0].URL = srv.URL + "/smw.zip"
	p := New(Deps{
		Source:   fakeSource{"smw": entry},
		Fetcher:  download.New(srv.Client(), rec),
		GamesDir: t.TempDir(),
		Sink:     rec,
	})
	desc, err := p.Install(context.Background(), "smw")
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if filepath.Base(desc.AssetPath) != "game.smc" {
		t.Fatalf("expected game.smc, got %s", desc.AssetPath)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	sawBytes := false
	for _, ev := range rec.events {
		if ev.Key != "smw" {
			t.Fatalf("unexpected key %q", ev.Key)
		}
		if ev.Stage == output.StageDownloading && ev.BytesReceived == int64(len(payload)) {
			sawBytes = true
		}
		if ev.Stage == output.StageDownloadingCover {
			t.Fatalf("no cover stage without a boxart url")
		}
	}
	if !sawBytes {
		t.Fatalf("expected a byte-level download event")
	}
}

func TestIsROM(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		want bool
	}{
		{name: "game.SMC", want: true},
		{name: "disc.cue", want: true},
		{name: "mario.v64", want: true},
		{name: "readme.txt"},
		{name: "noext"},
	}
	for _, tt := range tests {
		if got := IsROM(tt.name); got != tt.want {
			t.Fatalf("IsROM(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInstallDotNamesStayInsideGamesDir(t *testing.T) {
	t.Parallel()
	gamesDir := filepath.Join(t.TempDir(), "games")
	entry := crocdb.Entry{
		Slug:     "dots",
		Title:    "..",
		Platform: "..",
		Links:    []crocdb.Link{{URL: "https://files.example/dots.nes", Filename: ".."}},
	}
	p := New(Deps{
		Source:   fakeSource{"dots": entry},
		Fetcher:  fakeFetcher{"https://files.example/dots.nes": []byte("rom")},
		Covers:   fakeCovers{},
		GamesDir: gamesDir,
	})
	desc, err := p.Install(context.Background(), "dots")
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	want := filepath.Join(gamesDir, "_", "_", "_")
	if desc.AssetPath != want {
		t.Fatalf("expected asset at %s, got %s", want, desc.AssetPath)
	}
	rel, err := filepath.Rel(gamesDir, desc.AssetPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Fatalf("asset %s escapes %s", desc.AssetPath, gamesDir)
	}
}
