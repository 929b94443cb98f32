package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

const tempPrefix = ".download-"

// Downloads stages raw archives under the downloads directory.
type Downloads struct {
	dir string
}

// NewDownloads returns a Downloads rooted at dir.
func NewDownloads(dir string) *Downloads {
	return &Downloads{dir: dir}
}

// Dir returns the downloads directory.
func (d *Downloads) Dir() string {
	return d.dir
}

// Path returns the final location for name.
func (d *Downloads) Path(name string) string {
	return filepath.Join(d.dir, name)
}

// Has reports whether a committed download exists.
func (d *Downloads) Has(name string) bool {
	return helpers.FileExists(d.Path(name))
}

// TempFile reserves a temporary path for staging a download. The returned
// cleanup removes it unless it has been committed.
func (d *Downloads) TempFile(name string) (string, func(), error) {
	if err := os.MkdirAll(d.dir, helpers.DirMod); err != nil {
		return "", nil, fmt.Errorf("%w: failed to create %s: %w", helpers.ErrFilesystem, d.dir, err)
	}
	file, err := os.CreateTemp(d.dir, tempPrefix+"*-"+name)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to create temp file in %s: %w", helpers.ErrFilesystem, d.dir, err)
	}
	path := file.Name()
	_ = file.Close()
	cleanup := func() {
		_ = os.Remove(path)
	}
	return path, cleanup, nil
}

// Commit moves a staged download into its final location.
func (d *Downloads) Commit(name, tmpPath string) (string, error) {
	path := d.Path(name)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("%w: failed to commit %s: %w", helpers.ErrFilesystem, name, err)
	}
	return path, nil
}

// Delete removes a committed download.
func (d *Downloads) Delete(name string) error {
	if err := os.Remove(d.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	return nil
}

// ClearStale removes leftovers of interrupted downloads.
func (d *Downloads) ClearStale() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isStaleDownload(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
		}
	}
	return nil
}

func isStaleDownload(name string) bool {
	return strings.HasPrefix(name, tempPrefix) || strings.HasSuffix(name, ".tmp")
}
