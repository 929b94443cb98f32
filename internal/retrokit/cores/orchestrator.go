package cores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/archive"
	"github.com/greeddj/go-retrokit/internal/retrokit/cache"
	"github.com/greeddj/go-retrokit/internal/retrokit/download"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
	"github.com/greeddj/go-retrokit/internal/retrokit/registry"
	"github.com/greeddj/go-retrokit/internal/retrokit/store"
	"github.com/rs/zerolog"
)

// Recorder keeps core install records.
type Recorder interface {
	SetCore(rec store.CoreRecord)
	ClearCores()
}

// Deps wires an Orchestrator.
type Deps struct {
	Catalog      *registry.Catalog
	Pack         *cache.Manager
	Fetcher      cache.Fetcher
	CoresDir     string
	ResourceDir  string
	CoresBaseURL string
	Sink         output.Sink
	Recorder     Recorder
	Log          zerolog.Logger
}

// Orchestrator installs cores, trying the per-core download before the shared pack.
type Orchestrator struct {
	catalog  *registry.Catalog
	pack     *cache.Manager
	fetcher  cache.Fetcher
	coresDir string
	resource string
	baseURL  string
	sink     output.Sink
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// New builds an Orchestrator from deps.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		catalog:  deps.Catalog,
		pack:     deps.Pack,
		fetcher:  deps.Fetcher,
		coresDir: deps.CoresDir,
		resource: deps.ResourceDir,
		baseURL:  strings.TrimRight(deps.CoresBaseURL, "/"),
		sink:     output.Monotonic(deps.Sink),
		recorder: deps.Recorder,
		log:      deps.Log,
		now:      time.Now,
	}
}

// Catalog returns the catalog the orchestrator resolves ids against.
func (o *Orchestrator) Catalog() *registry.Catalog {
	return o.catalog
}

// CoresDir returns the install target directory.
func (o *Orchestrator) CoresDir() string {
	return o.coresDir
}

// View returns the merged catalog view for the install target.
func (o *Orchestrator) View() []registry.Core {
	return o.catalog.MergedView(o.coresDir, o.resource)
}

// Install places the library for id into the cores directory.
func (o *Orchestrator) Install(ctx context.Context, id string) (Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{}, helpers.ErrEmptyCoreID
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return Result{}, fmt.Errorf("%w: %q", helpers.ErrInvalidCoreID, id)
	}
	d := o.catalog.Resolve(id)
	key := output.CoreKey(d.ID)
	target := filepath.Join(o.coresDir, d.Filename)

	if helpers.FileExists(target) {
		o.log.Debug().Str("core", d.ID).Str("path", target).Msg("already installed")
		return o.finish(d, target, StrategyExisting), nil
	}
	if err := os.MkdirAll(o.coresDir, helpers.DirMod); err != nil {
		return Result{}, fmt.Errorf("%w: failed to create %s: %w", helpers.ErrFilesystem, o.coresDir, err)
	}

	output.Emit(o.sink, key, output.StageStarting, 0, "Installing "+d.Name)
	err := o.installDirect(ctx, d, target)
	if err == nil {
		return o.finish(d, target, StrategyDirect), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	o.log.Debug().Err(err).Str("core", d.ID).Msg("direct download failed, falling back to pack")

	if err := o.installFromPack(ctx, d, target); err != nil {
		return Result{}, err
	}
	return o.finish(d, target, StrategyPack), nil
}

func (o *Orchestrator) finish(d registry.Descriptor, target string, strategy Strategy) Result {
	if o.recorder != nil {
		o.recorder.SetCore(store.CoreRecord{
			ID:          d.ID,
			Filename:    d.Filename,
			Path:        target,
			Strategy:    string(strategy),
			InstalledAt: o.now().UTC(),
		})
	}
	output.Emit(o.sink, output.CoreKey(d.ID), output.StageCompleted, 100, fmt.Sprintf("Core %s installed", d.Name))
	return Result{Core: d, Path: target, Strategy: strategy}
}

// installDirect downloads {base}/{filename}.zip and extracts the library from it.
func (o *Orchestrator) installDirect(ctx context.Context, d registry.Descriptor, target string) error {
	if o.fetcher == nil || o.baseURL == "" {
		return fmt.Errorf("%w: no direct source configured", helpers.ErrNotFound)
	}
	downloads := o.pack.Downloads()
	tmpPath, cleanup, err := downloads.TempFile(d.Filename + ".zip")
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = o.fetcher.Fetch(ctx, download.Request{
		URL:         o.baseURL + "/" + d.Filename + ".zip",
		Destination: tmpPath,
		Key:         output.CoreKey(d.ID),
		Stage:       output.StageDownloadingCore,
		Sink:        o.sink,
	})
	if err != nil {
		return err
	}
	return archive.ExtractFirst(tmpPath, o.catalog.Info().LibExt, target)
}

// installFromPack prepares the shared pack and copies the first matching file.
func (o *Orchestrator) installFromPack(ctx context.Context, d registry.Descriptor, target string) error {
	if _, err := o.pack.PreparePack(ctx); err != nil {
		// The resource directory may still provide the core.
		if src, ok := o.pack.FindArtifact(d.Filenames()...); ok {
			return copyFile(src, target)
		}
		return fmt.Errorf("%w: %w: %s: %w", helpers.ErrNotFound, helpers.ErrCoreNotFound, d.Filename, err)
	}
	src, ok := o.pack.FindArtifact(d.Filenames()...)
	if !ok {
		return fmt.Errorf("%w: %w: %s", helpers.ErrNotFound, helpers.ErrCoreNotFound, d.Filename)
	}
	o.log.Debug().Str("core", d.ID).Str("src", src).Msg("copying from pack")
	output.Emit(o.sink, output.CoreKey(d.ID), output.StageCopying, 90, "Copying "+d.Filename)
	return copyFile(src, target)
}

// InstallAll installs every core of the merged view. Items already installed
// are skipped unless force is set. Item failures do not stop the batch.
func (o *Orchestrator) InstallAll(ctx context.Context, force bool) (InstallResult, error) {
	var res InstallResult
	if _, err := o.pack.PreparePack(ctx); err != nil {
		return res, err
	}

	view := o.View()
	total := len(view)
	handled := make(map[string]struct{}, total)
	for i, core := range view {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		o.installItem(ctx, core, force, handled, &res)
		progress := float64(i+1) / float64(total) * 100
		output.Emit(o.sink, output.KeyAllCores, output.StageCopying, progress, fmt.Sprintf("%d/%d %s", i+1, total, core.ID))
	}
	output.Emit(o.sink, output.KeyAllCores, output.StageCompleted, 100,
		fmt.Sprintf("%d installed, %d skipped, %d failed", res.Installed, res.Skipped, len(res.Errors)))
	return res, nil
}

func (o *Orchestrator) installItem(ctx context.Context, core registry.Core, force bool, handled map[string]struct{}, res *InstallResult) {
	target := filepath.Join(o.coresDir, core.Filename)
	// Cores sharing a library (gambatte and gambatte_gbc) are handled once per batch.
	if _, done := handled[strings.ToLower(core.Filename)]; done || (!force && registry.InstalledState(o.coresDir, core.Descriptor)) {
		res.Skipped++
		return
	}
	if force {
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			res.Errors = append(res.Errors, ItemError{ID: core.ID, Message: err.Error(), Err: fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)})
			return
		}
	}
	if _, err := o.Install(ctx, core.ID); err != nil {
		res.Errors = append(res.Errors, ItemError{ID: core.ID, Message: err.Error(), Err: err})
		return
	}
	handled[strings.ToLower(core.Filename)] = struct{}{}
	res.Installed++
}

// UninstallAll removes every library from the cores directory and returns how
// many were removed. With clearCache the extracted pack is removed as well.
func (o *Orchestrator) UninstallAll(clearCache bool) (int, error) {
	entries, err := os.ReadDir(o.coresDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	ext := strings.ToLower(o.catalog.Info().LibExt)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			continue
		}
		if err := os.Remove(filepath.Join(o.coresDir, e.Name())); err != nil {
			return removed, fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
		}
		removed++
	}
	if o.recorder != nil {
		o.recorder.ClearCores()
	}
	if clearCache {
		if err := o.pack.Clear(false); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// copyFile copies src to dst through a temporary file in dst's directory.
func copyFile(src, dst string) error {
	//nolint:gosec // src comes from a cache lookup.
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	defer func() {
		_ = in.Close()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to copy %s: %w", helpers.ErrFilesystem, src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	if err := os.Chmod(tmp.Name(), helpers.FileMod); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	return nil
}
