package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/greeddj/go-retrokit/internal/retrokit/archive"
	"github.com/greeddj/go-retrokit/internal/retrokit/download"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const lockRetryDelay = 100 * time.Millisecond

// Fetcher streams a URL to a file.
type Fetcher interface {
	Fetch(ctx context.Context, req download.Request) (download.Result, error)
}

// ExtractFunc unpacks an archive into a directory.
type ExtractFunc func(archivePath, dstDir string) error

// Paths locates the pack on disk.
type Paths struct {
	// DownloadsDir holds the raw pack archive.
	DownloadsDir string
	// CacheDir is the root of extraction caches; the pack lives in a subdirectory.
	CacheDir string
	// ResourceDir is an optional bundled directory searched after the pack.
	ResourceDir string
	// PackURL is where the pack archive is downloaded from.
	PackURL string
}

// Manager owns the shared cores pack: download, extraction and lookup.
type Manager struct {
	paths     Paths
	downloads *Downloads
	fetcher   Fetcher
	extract   ExtractFunc
	sink      output.Sink
	log       zerolog.Logger
	group     singleflight.Group
}

// Option customizes a Manager.
type Option func(*Manager)

// WithExtractor replaces the archive extractor used for the pack.
func WithExtractor(fn ExtractFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.extract = fn
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager returns a Manager for the pack described by paths.
func NewManager(paths Paths, fetcher Fetcher, sink output.Sink, opts ...Option) *Manager {
	if sink == nil {
		sink = output.Discard
	}
	m := &Manager{
		paths:     paths,
		downloads: NewDownloads(paths.DownloadsDir),
		fetcher:   fetcher,
		extract:   archive.Extract,
		sink:      sink,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Downloads exposes the download staging area.
func (m *Manager) Downloads() *Downloads {
	return m.downloads
}

// PackDir is where the pack is extracted.
func (m *Manager) PackDir() string {
	return filepath.Join(m.paths.CacheDir, helpers.PackName)
}

// ArchivePath is where the pack archive is stored.
func (m *Manager) ArchivePath() string {
	return m.downloads.Path(helpers.PackArchive)
}

func (m *Manager) markerPath() string {
	return filepath.Join(m.PackDir(), helpers.PackMarker)
}

func (m *Manager) lockPath() string {
	return filepath.Join(m.paths.CacheDir, "."+helpers.PackName+".lock")
}

// IsReady reports whether a completed extraction is present.
func (m *Manager) IsReady() bool {
	return helpers.FileExists(m.markerPath())
}

// PreparePack makes sure the pack is extracted and returns its directory.
// Concurrent callers share one preparation.
func (m *Manager) PreparePack(ctx context.Context) (string, error) {
	if m.IsReady() {
		return m.PackDir(), nil
	}
	ch := m.group.DoChan(helpers.PackName, func() (any, error) {
		return m.prepare(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		dir, _ := res.Val.(string)
		return dir, nil
	}
}

func (m *Manager) prepare(ctx context.Context) (string, error) {
	start := time.Now()
	if err := os.MkdirAll(m.paths.CacheDir, helpers.DirMod); err != nil {
		return "", fmt.Errorf("%w: %w: %w", helpers.ErrPackPreparationFailed, helpers.ErrFilesystem, err)
	}
	lock := flock.New(m.lockPath())
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return "", fmt.Errorf("%w: failed to lock %s: %w", helpers.ErrPackPreparationFailed, m.lockPath(), err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// Another process may have finished while we waited for the lock.
	if m.IsReady() {
		m.log.Debug().Str("dir", m.PackDir()).Msg("pack prepared by another process")
		return m.PackDir(), nil
	}

	archivePath, err := m.ensureArchive(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", helpers.ErrPackPreparationFailed, err)
	}
	if err := m.extractPack(archivePath); err != nil {
		return "", fmt.Errorf("%w: %w", helpers.ErrPackPreparationFailed, err)
	}
	m.log.Debug().Dur("took", time.Since(start)).Str("dir", m.PackDir()).Msg("pack ready")
	return m.PackDir(), nil
}

// ensureArchive downloads the pack unless an archive is already present.
func (m *Manager) ensureArchive(ctx context.Context) (string, error) {
	if m.downloads.Has(helpers.PackArchive) {
		m.log.Debug().Str("path", m.ArchivePath()).Msg("reusing downloaded pack")
		return m.ArchivePath(), nil
	}
	if m.fetcher == nil || m.paths.PackURL == "" {
		return "", fmt.Errorf("%w: no pack source configured", helpers.ErrNotFound)
	}

	tmpPath, cleanup, err := m.downloads.TempFile(helpers.PackArchive)
	if err != nil {
		return "", err
	}
	defer cleanup()

	output.Emit(m.sink, output.KeyCoresPack, output.StageDownloadingCores, 0, "Downloading cores pack...")
	res, err := m.fetcher.Fetch(ctx, download.Request{
		URL:         m.paths.PackURL,
		Destination: tmpPath,
		Key:         output.KeyCoresPack,
		Stage:       output.StageDownloadingCores,
	})
	if err != nil {
		return "", err
	}
	m.log.Debug().Int64("bytes", res.Bytes).Dur("took", res.Elapsed).Msg("pack downloaded")
	return m.downloads.Commit(helpers.PackArchive, tmpPath)
}

func (m *Manager) extractPack(archivePath string) error {
	output.Emit(m.sink, output.KeyCoresPack, output.StageExtractingCores, 0, "Extracting cores pack...")
	packDir := m.PackDir()
	// Leftovers of an interrupted extraction have no marker and are discarded.
	if err := os.RemoveAll(packDir); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	if err := os.MkdirAll(packDir, helpers.DirMod); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	if err := m.extract(archivePath, packDir); err != nil {
		return err
	}
	if err := os.WriteFile(m.markerPath(), []byte(helpers.PackMarkerContent), helpers.FileMod); err != nil {
		return fmt.Errorf("%w: failed to write marker: %w", helpers.ErrFilesystem, err)
	}
	output.Emit(m.sink, output.KeyCoresPack, output.StageExtractingCores, 100, "Cores pack ready")
	return nil
}

// FindArtifact searches the pack, then the resource directory, for the first
// file whose name matches one of names case-insensitively.
func (m *Manager) FindArtifact(names ...string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[strings.ToLower(name)] = struct{}{}
	}
	for _, root := range []string{m.PackDir(), m.paths.ResourceDir} {
		if root == "" {
			continue
		}
		if path, ok := findFile(root, wanted); ok {
			return path, true
		}
	}
	return "", false
}

//nolint:gochecknoglobals
var errFound = errors.New("found")

func findFile(root string, wanted map[string]struct{}) (string, bool) {
	var hit string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped.
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := wanted[strings.ToLower(d.Name())]; ok {
			hit = path
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return hit, true
	}
	return "", false
}

// Clear removes the extracted pack. With withDownloads it also removes the
// pack archive and stale partial downloads.
func (m *Manager) Clear(withDownloads bool) error {
	if err := os.RemoveAll(m.PackDir()); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	if !withDownloads {
		return nil
	}
	if err := m.downloads.Delete(helpers.PackArchive); err != nil {
		return err
	}
	return m.downloads.ClearStale()
}
