package retroarch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/greeddj/go-retrokit/internal/retrokit/arch"
	"github.com/greeddj/go-retrokit/internal/retrokit/archive"
	"github.com/greeddj/go-retrokit/internal/retrokit/cache"
	"github.com/greeddj/go-retrokit/internal/retrokit/download"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
	"github.com/rs/zerolog"
)

// VersionRecorder keeps the installed frontend version.
type VersionRecorder interface {
	SetRetroArchVersion(version string)
}

// Status describes the frontend installation.
type Status struct {
	Installed       bool
	Executable      string
	CoresDir        string
	Version         string
	Wanted          string
	UpdateAvailable bool
	PackReady       bool
}

// Result is the outcome of Install. PackErr is set when the install succeeded
// but the cores pack could not be prepared.
type Result struct {
	Status  Status
	Archive string
	PackErr error
}

// Deps wires an Installer.
type Deps struct {
	InstallRoot string
	Version     string
	URL         string
	Host        arch.Info
	Fetcher     cache.Fetcher
	Pack        *cache.Manager
	Recorder    VersionRecorder
	Sink        output.Sink
	Log         zerolog.Logger
}

// Installer downloads and unpacks the RetroArch frontend.
type Installer struct {
	root     string
	version  string
	url      string
	host     arch.Info
	fetcher  cache.Fetcher
	pack     *cache.Manager
	recorder VersionRecorder
	sink     output.Sink
	log      zerolog.Logger
}

// New builds an Installer from deps.
func New(deps Deps) *Installer {
	sink := deps.Sink
	if sink == nil {
		sink = output.Discard
	}
	return &Installer{
		root:     deps.InstallRoot,
		version:  strings.TrimPrefix(deps.Version, "v"),
		url:      deps.URL,
		host:     deps.Host,
		fetcher:  deps.Fetcher,
		pack:     deps.Pack,
		recorder: deps.Recorder,
		sink:     sink,
		log:      deps.Log,
	}
}

func (i *Installer) versionPath() string {
	return filepath.Join(i.root, helpers.RetroArchVersionFile)
}

// Status inspects the install root.
func (i *Installer) Status() (Status, error) {
	st := Status{
		Executable: filepath.Join(i.root, i.host.Executable),
		CoresDir:   filepath.Join(i.root, helpers.LayoutCores),
		Wanted:     i.version,
	}
	st.Installed = i.host.Executable != "" && helpers.PathExists(st.Executable)
	if i.pack != nil {
		st.PackReady = i.pack.IsReady()
	}
	//nolint:gosec // path is inside the install root.
	data, err := os.ReadFile(i.versionPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return st, fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	st.Version = strings.TrimSpace(string(data))
	if !st.Installed {
		return st, nil
	}
	update, err := NeedsUpdate(st.Version, st.Wanted)
	if err != nil {
		return st, err
	}
	st.UpdateAvailable = update
	return st, nil
}

// NeedsUpdate reports whether installed is older than wanted. An unknown
// installed version needs an update; an empty wanted version never does.
func NeedsUpdate(installed, wanted string) (bool, error) {
	if wanted == "" {
		return false, nil
	}
	if installed == "" {
		return true, nil
	}
	have, err := semver.NewVersion(installed)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %w", helpers.ErrInvalidVersion, installed, err)
	}
	want, err := semver.NewVersion(wanted)
	if err != nil {
		return false, fmt.Errorf("%w: %q: %w", helpers.ErrInvalidVersion, wanted, err)
	}
	return have.LessThan(want), nil
}

// archiveName is the downloads entry for the configured version. The
// container format follows the source URL.
func (i *Installer) archiveName() string {
	ext := strings.ToLower(path.Ext(i.url))
	if !archive.IsArchive(ext) {
		ext = filepath.Ext(helpers.RetroArchArchive)
	}
	base := strings.TrimSuffix(helpers.RetroArchArchive, filepath.Ext(helpers.RetroArchArchive))
	if i.version != "" {
		base += "-" + i.version
	}
	return base + ext
}

// Install downloads the frontend bundle, unpacks it into the install root and
// prepares the cores pack so later core installs work offline.
func (i *Installer) Install(ctx context.Context) (Result, error) {
	var res Result
	if i.version != "" {
		if _, err := semver.NewVersion(i.version); err != nil {
			return res, fmt.Errorf("%w: %q: %w", helpers.ErrInvalidVersion, i.version, err)
		}
	}
	archivePath, err := i.ensureArchive(ctx)
	if err != nil {
		return res, err
	}
	res.Archive = archivePath

	output.Emit(i.sink, output.KeyRetroArch, output.StageExtracting, 0, "Extracting RetroArch...")
	if err := i.unpack(archivePath); err != nil {
		return res, err
	}
	if err := os.WriteFile(i.versionPath(), []byte(i.version+"\n"), helpers.FileMod); err != nil {
		return res, fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	if i.recorder != nil {
		i.recorder.SetRetroArchVersion(i.version)
	}
	output.Emit(i.sink, output.KeyRetroArch, output.StageExtracting, 100, "RetroArch extracted")

	if i.pack != nil {
		if _, err := i.pack.PreparePack(ctx); err != nil {
			i.log.Warn().Err(err).Msg("cores pack is not ready, core installs will download on demand")
			res.PackErr = err
		}
	}

	st, err := i.Status()
	if err != nil {
		return res, err
	}
	res.Status = st
	output.Emit(i.sink, output.KeyRetroArch, output.StageCompleted, 100, "RetroArch installed")
	return res, nil
}

// ensureArchive returns the downloaded bundle for the configured version,
// fetching it when it is not in the downloads directory yet.
func (i *Installer) ensureArchive(ctx context.Context) (string, error) {
	if i.pack == nil {
		return "", fmt.Errorf("%w: no downloads directory configured", helpers.ErrNotFound)
	}
	downloads := i.pack.Downloads()
	name := i.archiveName()
	if downloads.Has(name) {
		i.log.Debug().Str("path", downloads.Path(name)).Msg("reusing downloaded retroarch")
		return downloads.Path(name), nil
	}
	if i.fetcher == nil || i.url == "" {
		return "", fmt.Errorf("%w: no retroarch source configured", helpers.ErrNotFound)
	}
	tmpPath, cleanup, err := downloads.TempFile(name)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if _, err := i.fetcher.Fetch(ctx, download.Request{
		URL:         i.url,
		Destination: tmpPath,
		Key:         output.KeyRetroArch,
		Stage:       output.StageDownloading,
	}); err != nil {
		return "", err
	}
	return downloads.Commit(name, tmpPath)
}

// unpack extracts into a staging directory next to the install root and moves
// the bundle contents over, keeping unrelated files such as cores and games.
func (i *Installer) unpack(archivePath string) error {
	if err := os.MkdirAll(i.root, helpers.DirMod); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	staging, err := os.MkdirTemp(i.root, ".retroarch-*")
	if err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	defer func() {
		_ = os.RemoveAll(staging)
	}()
	if err := archive.ExtractBundle(archivePath, staging); err != nil {
		return err
	}
	return mergeInto(staging, i.root)
}

// mergeInto moves the entries of src into dst. Directories present on both
// sides are merged recursively; files replace existing ones.
func mergeInto(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		info, err := os.Lstat(to)
		switch {
		case err == nil && info.IsDir() && e.IsDir():
			if err := mergeInto(from, to); err != nil {
				return err
			}
			continue
		case err == nil:
			if err := os.RemoveAll(to); err != nil {
				return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
		}
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
		}
	}
	return nil
}
