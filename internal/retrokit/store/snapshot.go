package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	bolt "go.etcd.io/bbolt"
)

// Load reads persisted state from Bolt databases.
func Load(dbs *DBs) (*Store, error) {
	store := New()
	if dbs == nil {
		return store, nil
	}

	if err := loadMeta(dbs, store); err != nil {
		return nil, err
	}
	if err := validateSnapshotSchema(store.Meta.SchemaVersion); err != nil {
		return nil, err
	}
	steps := []func() error{
		func() error { return loadGames(dbs, store) },
		func() error { return loadCores(dbs, store) },
		func() error { return loadEntries(dbs, store) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Save writes state to Bolt databases.
func Save(dbs *DBs, store *Store) error {
	if dbs == nil {
		return helpers.ErrDbNil
	}
	if store == nil {
		return helpers.ErrStoreNil
	}

	data := store.snapshotData()
	data.Meta.SchemaVersion = helpers.StoreSnapshotSchemaVersion
	data.Meta.LastSnapshot = time.Now().UTC()

	if err := saveMeta(dbs, data.Meta); err != nil {
		return err
	}
	steps := []func() error{
		func() error { return saveBucket(dbs.library, helpers.StoreBucketGames, data.Games) },
		func() error { return saveBucket(dbs.cores, helpers.StoreBucketCores, data.Cores) },
		func() error { return saveBucket(dbs.entries, helpers.StoreBucketEntries, data.Entries) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func validateSnapshotSchema(version int) error {
	if version > helpers.StoreSnapshotSchemaVersion {
		return fmt.Errorf("%w: %d", helpers.ErrUnsupportedSchemaVersion, version)
	}
	return nil
}

func loadMeta(dbs *DBs, store *Store) error {
	if dbs.meta == nil {
		return nil
	}
	return dbs.meta.View(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket([]byte(helpers.StoreBucketMeta))
		if metaBucket == nil {
			return nil
		}
		if v := metaBucket.Get([]byte(helpers.StoreMetaSchemaVersion)); v != nil {
			version, err := strconv.Atoi(string(v))
			if err != nil {
				return fmt.Errorf("invalid schema version: %w", err)
			}
			store.Meta.SchemaVersion = version
		}
		if v := metaBucket.Get([]byte(helpers.StoreMetaLastSnapshot)); v != nil {
			t, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				return fmt.Errorf("invalid snapshot time: %w", err)
			}
			store.Meta.LastSnapshot = t
		}
		if v := metaBucket.Get([]byte(helpers.StoreMetaRetroArchVersion)); v != nil {
			store.Meta.RetroArchVersion = string(v)
		}
		return nil
	})
}

func loadGames(dbs *DBs, store *Store) error {
	return loadBucket(dbs.library, helpers.StoreBucketGames, func(k, v []byte) error {
		var rec GameRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		store.Games[string(k)] = rec
		return nil
	})
}

func loadCores(dbs *DBs, store *Store) error {
	return loadBucket(dbs.cores, helpers.StoreBucketCores, func(k, v []byte) error {
		var rec CoreRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		store.Cores[string(k)] = rec
		return nil
	})
}

func loadEntries(dbs *DBs, store *Store) error {
	return loadBucket(dbs.entries, helpers.StoreBucketEntries, func(k, v []byte) error {
		var entry EntryCacheEntry
		if err := json.Unmarshal(v, &entry); err != nil {
			return err
		}
		store.Entries[string(k)] = entry
		return nil
	})
}

func saveMeta(dbs *DBs, meta SnapshotMeta) error {
	if dbs.meta == nil {
		return nil
	}
	return dbs.meta.Update(func(tx *bolt.Tx) error {
		metaBucket, err := ensureEmptyBucket(tx, helpers.StoreBucketMeta)
		if err != nil {
			return err
		}
		if err := metaBucket.Put([]byte(helpers.StoreMetaSchemaVersion), []byte(strconv.Itoa(meta.SchemaVersion))); err != nil {
			return err
		}
		if err := metaBucket.Put([]byte(helpers.StoreMetaLastSnapshot), []byte(meta.LastSnapshot.Format(time.RFC3339Nano))); err != nil {
			return err
		}
		if meta.RetroArchVersion != "" {
			if err := metaBucket.Put([]byte(helpers.StoreMetaRetroArchVersion), []byte(meta.RetroArchVersion)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ensureEmptyBucket recreates a bucket to ensure it is empty.
func ensureEmptyBucket(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	if tx.Bucket([]byte(name)) != nil {
		if err := tx.DeleteBucket([]byte(name)); err != nil {
			return nil, err
		}
	}
	return tx.CreateBucket([]byte(name))
}

// loadBucket iterates over a bucket and calls fn for each entry.
func loadBucket(db *bolt.DB, name string, fn func(k, v []byte) error) error {
	if db == nil {
		return nil
	}
	return db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(name))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(fn)
	})
}

// saveBucket replaces a bucket with the JSON encoding of data.
func saveBucket[T any](db *bolt.DB, name string, data map[string]T) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := ensureEmptyBucket(tx, name)
		if err != nil {
			return err
		}
		for key, entry := range data {
			encoded, err := json.Marshal(&entry)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(key), encoded); err != nil {
				return err
			}
		}
		return nil
	})
}
