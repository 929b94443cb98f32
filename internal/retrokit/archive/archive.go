package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// Format is a supported archive container.
type Format int

const (
	// FormatUnknown is returned for extensions other than zip and 7z.
	FormatUnknown Format = iota
	// FormatZip is a PKZIP archive.
	FormatZip
	// FormatSevenZip is a 7-Zip archive.
	FormatSevenZip
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatSevenZip:
		return "7z"
	default:
		return "unknown"
	}
}

// DetectFormat picks the container format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return FormatZip
	case ".7z":
		return FormatSevenZip
	default:
		return FormatUnknown
	}
}

// IsArchive reports whether path has a supported archive extension.
func IsArchive(path string) bool {
	return DetectFormat(path) != FormatUnknown
}

// entry is a format independent view of one archive member.
type entry struct {
	name string
	info fs.FileInfo
	open func() (io.ReadCloser, error)
}

// reader lists archive members and releases the underlying file.
type reader struct {
	entries []entry
	close   func() error
}

func openArchive(path string) (*reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat file %s: %w", helpers.ErrArchive, path, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %w: %s", helpers.ErrArchive, helpers.ErrFileIsEmpty, path)
	}

	switch DetectFormat(path) {
	case FormatZip:
		return openZip(path)
	case FormatSevenZip:
		return openSevenZip(path)
	default:
		return nil, fmt.Errorf("%w: %w: %s", helpers.ErrArchive, helpers.ErrUnsupportedArchiveFormat, path)
	}
}

func openZip(path string) (*reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open zip %s: %w", helpers.ErrArchive, path, err)
	}
	entries := make([]entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, entry{name: f.Name, info: f.FileInfo(), open: f.Open})
	}
	return &reader{entries: entries, close: zr.Close}, nil
}

func openSevenZip(path string) (*reader, error) {
	sr, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open 7z %s: %w", helpers.ErrArchive, path, err)
	}
	entries := make([]entry, 0, len(sr.File))
	for _, f := range sr.File {
		entries = append(entries, entry{name: f.Name, info: f.FileInfo(), open: f.Open})
	}
	return &reader{entries: entries, close: sr.Close}, nil
}

// Extract unpacks every member of archivePath into dstDir.
func Extract(archivePath, dstDir string) error {
	r, err := openArchive(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.close()
	}()

	if err := os.MkdirAll(dstDir, helpers.DirMod); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %w", helpers.ErrArchive, dstDir, err)
	}
	var extracted int64
	for _, e := range r.entries {
		if err := extractEntry(e, dstDir, &extracted); err != nil {
			return fmt.Errorf("%w: %s: %w", helpers.ErrArchive, archivePath, err)
		}
	}
	return nil
}

// ExtractBundle unpacks archivePath into dstDir and hoists a single wrapper directory.
func ExtractBundle(archivePath, dstDir string) error {
	if err := Extract(archivePath, dstDir); err != nil {
		return err
	}
	return Flatten(dstDir)
}

// ExtractFirst writes the first file member whose name ends with suffix to
// target. Other members are ignored.
func ExtractFirst(archivePath, suffix, target string) error {
	r, err := openArchive(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.close()
	}()

	suffix = strings.ToLower(suffix)
	for _, e := range r.entries {
		if e.info.IsDir() || !strings.HasSuffix(strings.ToLower(e.name), suffix) {
			continue
		}
		if err := writeEntryAtomic(e, target); err != nil {
			return fmt.Errorf("%w: %s: %w", helpers.ErrArchive, archivePath, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %w: no *%s in %s", helpers.ErrArchive, helpers.ErrArchiveHasNoPayload, suffix, archivePath)
}

func extractEntry(e entry, dstDir string, extracted *int64) error {
	relPath, err := sanitizeArchivePath(e.name)
	if err != nil {
		return err
	}
	if relPath == "" {
		return nil
	}
	if err := ensureNoSymlinkParents(dstDir, relPath); err != nil {
		return err
	}
	targetPath := filepath.Join(dstDir, relPath)

	if e.info.IsDir() {
		if err := os.MkdirAll(targetPath, helpers.DirMod); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", targetPath, err)
		}
		return nil
	}
	if !e.info.Mode().IsRegular() {
		return nil
	}
	size := e.info.Size()
	if size > helpers.ArchiveMaxEntrySize {
		return fmt.Errorf("%w %s: %d bytes", helpers.ErrArchiveEntryIsTooLarge, e.name, size)
	}
	if *extracted+size > helpers.ArchiveMaxTotalSize {
		return fmt.Errorf("%w: %d bytes", helpers.ErrArchiveExceedsMaxSize, helpers.ArchiveMaxTotalSize)
	}
	written, err := writeEntry(e, targetPath)
	*extracted += written
	return err
}

func writeEntry(e entry, targetPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(targetPath), helpers.DirMod); err != nil {
		return 0, fmt.Errorf("failed to create directories for %s: %w", targetPath, err)
	}
	src, err := e.open()
	if err != nil {
		return 0, fmt.Errorf("failed to open entry %s: %w", e.name, err)
	}
	defer func() {
		_ = src.Close()
	}()

	mode := e.info.Mode().Perm()
	if mode == 0 {
		mode = helpers.FileMod
	}
	//nolint:gosec // targetPath is a sanitized archive entry under dstDir.
	file, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", targetPath, err)
	}
	written, err := io.Copy(file, io.LimitReader(src, helpers.ArchiveMaxEntrySize+1))
	if err != nil {
		_ = file.Close()
		return written, fmt.Errorf("failed to write file %s: %w", targetPath, err)
	}
	if written > helpers.ArchiveMaxEntrySize {
		_ = file.Close()
		return written, fmt.Errorf("%w %s: %d bytes", helpers.ErrArchiveEntryIsTooLarge, e.name, written)
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("failed to close file %s: %w", targetPath, err)
	}
	return written, nil
}

// writeEntryAtomic writes e next to target and renames it into place.
func writeEntryAtomic(e entry, target string) error {
	if e.info.Size() > helpers.ArchiveMaxEntrySize {
		return fmt.Errorf("%w %s: %d bytes", helpers.ErrArchiveEntryIsTooLarge, e.name, e.info.Size())
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, helpers.DirMod); err != nil {
		return fmt.Errorf("failed to create directories for %s: %w", target, err)
	}
	tmp, err := os.CreateTemp(dir, ".extract-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := writeEntry(e, tmpPath); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, helpers.FileMod); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", tmpPath, target, err)
	}
	return nil
}
