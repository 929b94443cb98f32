package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// sanitizeArchivePath validates and normalizes an archive entry path.
func sanitizeArchivePath(name string) (string, error) {
	if name == "" {
		return "", helpers.ErrArchiveEntryHasEmptyName
	}
	// zip and 7z both store forward slashes, some Windows tools emit backslashes.
	cleaned := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
	if cleaned == "." {
		return "", nil
	}
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" || strings.HasPrefix(cleaned, string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", helpers.ErrArchiveEntryIsAbsolutePath, name)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", helpers.ErrArchiveEntryEscapesDestination, name)
	}
	return cleaned, nil
}

// ensureNoSymlinkParents rejects paths that traverse symlink parents.
func ensureNoSymlinkParents(baseDir, relPath string) error {
	if relPath == "" || relPath == "." {
		return nil
	}
	current := baseDir
	for part := range strings.SplitSeq(relPath, string(os.PathSeparator)) {
		if part == "" || part == "." {
			continue
		}
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat path %s: %w", current, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s", helpers.ErrArchivePathContainsSymlinkComponent, current)
		}
	}
	return nil
}

// Flatten hoists the contents of a lone top-level directory in dstDir one
// level up and removes the wrapper. Any other layout is left untouched.
func Flatten(dstDir string) error {
	entries, err := os.ReadDir(dstDir)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %w", helpers.ErrArchive, dstDir, err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	// Move the wrapper aside first so a child with the same name can take its place.
	wrapper, err := os.MkdirTemp(dstDir, ".flatten-*")
	if err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrArchive, err)
	}
	if err := os.Remove(wrapper); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrArchive, err)
	}
	if err := os.Rename(filepath.Join(dstDir, entries[0].Name()), wrapper); err != nil {
		return fmt.Errorf("%w: failed to move %s: %w", helpers.ErrArchive, entries[0].Name(), err)
	}

	children, err := os.ReadDir(wrapper)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %w", helpers.ErrArchive, wrapper, err)
	}
	for _, child := range children {
		from := filepath.Join(wrapper, child.Name())
		to := filepath.Join(dstDir, child.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("%w: failed to hoist %s: %w", helpers.ErrArchive, child.Name(), err)
		}
	}
	if err := os.Remove(wrapper); err != nil {
		return fmt.Errorf("%w: failed to remove %s: %w", helpers.ErrArchive, wrapper, err)
	}
	return nil
}
