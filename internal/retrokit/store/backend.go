package store

import (
	"context"
	"os"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// Backend keeps the library snapshot under the data directory.
type Backend struct {
	dir string
	dbs *DBs
}

// NewBackend creates a Backend rooted at dir.
func NewBackend(dir string) *Backend {
	return &Backend{dir: dir}
}

// Open initializes storage.
func (b *Backend) Open(_ context.Context) error {
	return b.ensureOpen()
}

// Close releases any open resources.
func (b *Backend) Close(_ context.Context) error {
	if b.dbs == nil {
		return nil
	}
	err := b.dbs.Close()
	b.dbs = nil
	return err
}

// Lock obtains an exclusive lock for the data directory.
func (b *Backend) Lock(_ context.Context) (func() error, error) {
	return AcquireLock(b.dir)
}

// LoadStore loads the persisted snapshot.
func (b *Backend) LoadStore(_ context.Context) (*Store, error) {
	if err := b.ensureOpen(); err != nil {
		return nil, err
	}
	return Load(b.dbs)
}

// SaveStore persists the snapshot.
func (b *Backend) SaveStore(_ context.Context, st *Store) error {
	if err := b.ensureOpen(); err != nil {
		return err
	}
	return Save(b.dbs, st)
}

func (b *Backend) ensureOpen() error {
	if b.dbs != nil {
		return nil
	}
	if b.dir == "" {
		return helpers.ErrDataDirEmpty
	}
	if err := os.MkdirAll(b.dir, helpers.DirMod); err != nil {
		return err
	}
	dbs, err := OpenDBs(b.dir)
	if err != nil {
		return err
	}
	b.dbs = dbs
	return nil
}
