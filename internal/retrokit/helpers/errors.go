package helpers

import "errors"

var (
	// ErrNetwork indicates a transport failure or a non-success HTTP status.
	ErrNetwork = errors.New("network error")
	// ErrArchive indicates a malformed or unreadable archive, or one without payload.
	ErrArchive = errors.New("archive error")
	// ErrNotFound indicates no matching artifact was found in any source.
	ErrNotFound = errors.New("not found")
	// ErrFilesystem indicates a directory or file could not be created, read or written.
	ErrFilesystem = errors.New("filesystem error")

	// ErrArchivePathContainsSymlinkComponent indicates an archive path traverses a symlink.
	ErrArchivePathContainsSymlinkComponent = errors.New("archive path contains symlink component")
	// ErrArchiveExceedsMaxSize indicates an archive exceeds the maximum total size.
	ErrArchiveExceedsMaxSize = errors.New("archive exceeds maximum total size")
	// ErrArchiveEntryIsTooLarge indicates an archive entry is too large.
	ErrArchiveEntryIsTooLarge = errors.New("archive entry is too large")
	// ErrArchiveEntryEscapesDestination indicates an archive entry escapes the destination.
	ErrArchiveEntryEscapesDestination = errors.New("archive entry escapes destination")
	// ErrArchiveEntryIsAbsolutePath indicates an archive entry uses an absolute path.
	ErrArchiveEntryIsAbsolutePath = errors.New("archive entry is absolute path")
	// ErrArchiveEntryHasEmptyName indicates an archive entry has an empty name.
	ErrArchiveEntryHasEmptyName = errors.New("archive entry has empty name")
	// ErrUnsupportedArchiveFormat indicates the archive extension is not zip or 7z.
	ErrUnsupportedArchiveFormat = errors.New("unsupported archive format")
	// ErrArchiveHasNoPayload indicates no archive entry matched the requested payload.
	ErrArchiveHasNoPayload = errors.New("archive has no payload")
	// ErrFileIsEmpty indicates a file is empty.
	ErrFileIsEmpty = errors.New("file is empty")

	// ErrDownloadFailed indicates a download returned a non-success status.
	ErrDownloadFailed = errors.New("download failed")
	// ErrCoreNotFound indicates a core file was found in neither the direct source nor the pack.
	ErrCoreNotFound = errors.New("core not found in any source")
	// ErrPackPreparationFailed indicates the shared cores pack could not be prepared.
	ErrPackPreparationFailed = errors.New("cores pack preparation failed")
	// ErrInstallationFailed indicates one or more batch items failed.
	ErrInstallationFailed = errors.New("installation failed")
	// ErrEmptyCoreID indicates an empty core id was requested.
	ErrEmptyCoreID = errors.New("empty core id")
	// ErrInvalidCoreID indicates a core id that is not a single path segment.
	ErrInvalidCoreID = errors.New("invalid core id")

	// ErrEntryHasNoLinks indicates a catalog entry has no downloadable links.
	ErrEntryHasNoLinks = errors.New("no download links available")
	// ErrNoRomInArchive indicates an extracted game archive contained no files.
	ErrNoRomInArchive = errors.New("no ROM file found in archive")
	// ErrEmptySlug indicates an empty catalog slug was requested.
	ErrEmptySlug = errors.New("empty slug")
	// ErrCatalogResponse indicates the catalog API returned an unexpected payload.
	ErrCatalogResponse = errors.New("unexpected catalog response")

	// ErrRetroArchNotInstalled indicates the frontend executable is missing.
	ErrRetroArchNotInstalled = errors.New("retroarch is not installed")
	// ErrInvalidVersion indicates a version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrConfigIsNil indicates a nil config was provided.
	ErrConfigIsNil = errors.New("config is nil")
	// ErrDataDirEmpty indicates the data directory is empty.
	ErrDataDirEmpty = errors.New("data directory is empty")
	// ErrInstallRootEmpty indicates the install root is empty.
	ErrInstallRootEmpty = errors.New("install root is empty")
	// ErrUnsupportedPlatform indicates no library extension is known for the host.
	ErrUnsupportedPlatform = errors.New("unsupported host platform")
	// ErrInvalidCatalog indicates a catalog override file is invalid.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrAnotherInstanceIsRunning indicates another instance is already running.
	ErrAnotherInstanceIsRunning = errors.New("another instance is running")

	// ErrDbNil indicates a nil Bolt DB was provided.
	ErrDbNil = errors.New("bolt DB is nil")
	// ErrStoreNil indicates a nil store was provided.
	ErrStoreNil = errors.New("store is nil")
	// ErrUnsupportedSchemaVersion indicates the snapshot schema version is unsupported.
	ErrUnsupportedSchemaVersion = errors.New("unsupported snapshot schema version")
)
