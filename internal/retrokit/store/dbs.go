package store

import (
	"path/filepath"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	bolt "go.etcd.io/bbolt"
)

// DBs holds BoltDB handles for snapshot storage.
type DBs struct {
	meta    *bolt.DB
	library *bolt.DB
	cores   *bolt.DB
	entries *bolt.DB
}

// OpenDBs opens all snapshot BoltDB files under dir.
func OpenDBs(dir string) (*DBs, error) {
	dbs := &DBs{}
	targets := []struct {
		db   **bolt.DB
		name string
	}{
		{&dbs.meta, helpers.StoreSnapshotMeta},
		{&dbs.library, helpers.StoreSnapshotLibrary},
		{&dbs.cores, helpers.StoreSnapshotCores},
		{&dbs.entries, helpers.StoreSnapshotEntries},
	}
	for _, target := range targets {
		db, err := openBolt(filepath.Join(dir, target.name))
		if err != nil {
			_ = dbs.Close()
			return nil, err
		}
		*target.db = db
	}
	return dbs, nil
}

// Close closes all open BoltDB handles.
func (s *DBs) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	for _, db := range []*bolt.DB{s.meta, s.library, s.cores, s.entries} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openBolt opens a Bolt database at the given path.
func openBolt(path string) (*bolt.DB, error) {
	return bolt.Open(path, helpers.FileMod, &bolt.Options{Timeout: time.Second})
}
