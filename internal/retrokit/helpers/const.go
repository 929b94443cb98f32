package helpers

import "time"

const (
	// DirMod is the default permission for created directories.
	DirMod = 0o755
	// FileMod is the default permission for created files.
	FileMod = 0o644

	// ArchiveMaxEntrySize caps a single archive entry size during extraction.
	ArchiveMaxEntrySize = int64(2 << 30) // 2 GiB per file, disc images included
	// ArchiveMaxTotalSize caps total extracted bytes per archive.
	ArchiveMaxTotalSize = int64(16 << 30) // 16 GiB per archive

	// FetchDefaultTimeout is the overall HTTP client timeout for API calls.
	FetchDefaultTimeout = 30 * time.Second
	// FetchDialContextTimeout is the dial timeout for outbound connections.
	FetchDialContextTimeout = 10 * time.Second
	// FetchDialContextKeepAlive is the TCP keep-alive for dials.
	FetchDialContextKeepAlive = 30 * time.Second
	// FetchForceAttemptHTTP2 enables HTTP/2 attempts when possible.
	FetchForceAttemptHTTP2 = true
	// FetchMaxIdleConns is the maximum number of idle connections.
	FetchMaxIdleConns = 100
	// FetchMaxIdleConnsPerHost limits idle connections per host.
	FetchMaxIdleConnsPerHost = 10
	// FetchIdleConnTimeout is the idle connection timeout.
	FetchIdleConnTimeout = 30 * time.Second
	// FetchTLSHandshakeTimeout is the TLS handshake timeout.
	FetchTLSHandshakeTimeout = 10 * time.Second
	// FetchExpectContinueTimeout is the expect-continue timeout.
	FetchExpectContinueTimeout = 1 * time.Second
	// FetchRetryMaxTries bounds catalog API retries.
	FetchRetryMaxTries = 3

	// ProgressInterval is the minimum spacing between download progress events.
	ProgressInterval = 120 * time.Millisecond
	// ProgressMinElapsed floors elapsed time for speed calculation.
	ProgressMinElapsed = time.Millisecond

	// CatalogEntryTTL is how long a cached catalog entry is served without refetch.
	CatalogEntryTTL = 24 * time.Hour

	// LayoutDownloads is the raw archive directory under the data root.
	LayoutDownloads = "downloads"
	// LayoutCache is the extraction cache directory under the data root.
	LayoutCache = "cache"
	// LayoutCores is the installed cores directory under the install root.
	LayoutCores = "cores"
	// LayoutGames is the games directory under the install root.
	LayoutGames = "games"

	// PackName is the shared cores pack cache name.
	PackName = "retroarch_cores"
	// PackArchive is the shared cores pack archive filename.
	PackArchive = "RetroArch_cores.7z"
	// PackMarker marks a completed pack extraction.
	PackMarker = ".extracted"
	// PackMarkerContent is written into the marker file.
	PackMarkerContent = "ok"

	// RetroArchArchive is the frontend bundle archive filename.
	RetroArchArchive = "RetroArch.7z"
	// RetroArchVersionFile records the installed frontend version.
	RetroArchVersionFile = ".retrokit-version"

	// LibretroSuffix precedes the library extension in core filenames.
	LibretroSuffix = "_libretro"

	// GameExtractDir is the per-game extraction subdirectory.
	GameExtractDir = "extracted"
	// GameDescriptorFile is the per-game install descriptor filename.
	GameDescriptorFile = "game.yml"

	// StoreSnapshotSchemaVersion is the current snapshot schema version.
	StoreSnapshotSchemaVersion = 1

	// StoreDBLock is the run lock file name.
	StoreDBLock = ".go-retrokit.lock"

	// StoreSnapshotMeta is the snapshot DB filename for metadata.
	StoreSnapshotMeta = "go-retrokit-meta.db"
	// StoreSnapshotLibrary is the snapshot DB filename for installed games.
	StoreSnapshotLibrary = "go-retrokit-library.db"
	// StoreSnapshotCores is the snapshot DB filename for core install records.
	StoreSnapshotCores = "go-retrokit-cores.db"
	// StoreSnapshotEntries is the snapshot DB filename for cached catalog entries.
	StoreSnapshotEntries = "go-retrokit-entries.db"

	// StoreBucketMeta is the bucket name for snapshot metadata.
	StoreBucketMeta = "meta"
	// StoreBucketGames is the bucket name for installed games.
	StoreBucketGames = "games"
	// StoreBucketCores is the bucket name for core install records.
	StoreBucketCores = "cores"
	// StoreBucketEntries is the bucket name for cached catalog entries.
	StoreBucketEntries = "entries"

	// StoreMetaSchemaVersion is the metadata key for the snapshot schema version.
	StoreMetaSchemaVersion = "schema_version"
	// StoreMetaLastSnapshot is the metadata key for the last snapshot time.
	StoreMetaLastSnapshot = "last_snapshot"
	// StoreMetaRetroArchVersion is the metadata key for the installed frontend version.
	StoreMetaRetroArchVersion = "retroarch_version"
)
