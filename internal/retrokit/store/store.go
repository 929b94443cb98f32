package store

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// SnapshotMeta holds metadata about the persisted snapshot.
type SnapshotMeta struct {
	SchemaVersion    int       `json:"schema_version"`
	LastSnapshot     time.Time `json:"last_snapshot"`
	RetroArchVersion string    `json:"retroarch_version"`
}

// GameRecord is an installed game as handed over by the install pipeline.
type GameRecord struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	AssetPath   string    `json:"asset_path"`
	CoverPath   string    `json:"cover_path,omitempty"`
	GameDir     string    `json:"game_dir"`
	InstalledAt time.Time `json:"installed_at"`
}

// CoreRecord remembers how a core reached the cores directory.
type CoreRecord struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	Strategy    string    `json:"strategy"`
	InstalledAt time.Time `json:"installed_at"`
}

// EntryCacheEntry stores a raw catalog response body.
type EntryCacheEntry struct {
	Key       string        `json:"key"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
	Body      []byte        `json:"body"`
}

// Store holds library and catalog cache state.
type Store struct {
	mu      sync.RWMutex               `json:"-"`
	Meta    SnapshotMeta               `json:"meta"`
	Games   map[string]GameRecord      `json:"games"`
	Cores   map[string]CoreRecord      `json:"cores"`
	Entries map[string]EntryCacheEntry `json:"entries"`
}

// New creates an initialized Store with empty maps.
func New() *Store {
	return &Store{
		Meta: SnapshotMeta{
			SchemaVersion: helpers.StoreSnapshotSchemaVersion,
		},
		Games:   make(map[string]GameRecord),
		Cores:   make(map[string]CoreRecord),
		Entries: make(map[string]EntryCacheEntry),
	}
}

// SetGame records an installed game under its slug.
func (m *Store) SetGame(rec GameRecord) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Games[rec.Slug] = rec
}

// GetGame returns an installed game by slug.
func (m *Store) GetGame(slug string) (GameRecord, bool) {
	if m == nil {
		return GameRecord{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.Games[slug]
	return rec, ok
}

// DeleteGame removes an installed game by slug.
func (m *Store) DeleteGame(slug string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Games, slug)
}

// GamesSnapshot returns installed games ordered by platform and title.
func (m *Store) GamesSnapshot() []GameRecord {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	out := slices.Collect(maps.Values(m.Games))
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b GameRecord) int {
		return cmp.Or(cmp.Compare(a.Platform, b.Platform), cmp.Compare(a.Title, b.Title))
	})
	return out
}

// SetCore records a core install.
func (m *Store) SetCore(rec CoreRecord) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cores[rec.ID] = rec
}

// GetCore returns a core install record by id.
func (m *Store) GetCore(id string) (CoreRecord, bool) {
	if m == nil {
		return CoreRecord{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.Cores[id]
	return rec, ok
}

// ClearCores drops every core install record.
func (m *Store) ClearCores() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cores = make(map[string]CoreRecord)
}

// GetEntry returns a cached catalog response by key.
func (m *Store) GetEntry(key string) (EntryCacheEntry, bool) {
	if m == nil {
		return EntryCacheEntry{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.Entries[key]
	return entry, ok
}

// SetEntry stores a catalog response.
func (m *Store) SetEntry(key string, entry EntryCacheEntry) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[key] = entry
}

// ClearEntries drops the catalog response cache.
func (m *Store) ClearEntries() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = make(map[string]EntryCacheEntry)
}

// MetaSnapshot returns the current snapshot metadata.
func (m *Store) MetaSnapshot() SnapshotMeta {
	if m == nil {
		return SnapshotMeta{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Meta
}

// SetRetroArchVersion stores the installed frontend version.
func (m *Store) SetRetroArchVersion(version string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Meta.RetroArchVersion = version
}

// snapshotData is a serialized view of Store contents.
type snapshotData struct {
	Meta    SnapshotMeta
	Games   map[string]GameRecord
	Cores   map[string]CoreRecord
	Entries map[string]EntryCacheEntry
}

// snapshotData builds a snapshot payload from the store.
func (m *Store) snapshotData() snapshotData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshotData{
		Meta:    m.Meta,
		Games:   maps.Clone(m.Games),
		Cores:   maps.Clone(m.Cores),
		Entries: maps.Clone(m.Entries),
	}
}
