package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// AcquireLock takes the run lock in dir so only one instance writes the library.
func AcquireLock(dir string) (func() error, error) {
	if dir == "" {
		return nil, helpers.ErrDataDirEmpty
	}
	if err := os.MkdirAll(dir, helpers.DirMod); err != nil {
		return nil, fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	lockPath := filepath.Join(dir, helpers.StoreDBLock)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", helpers.ErrAnotherInstanceIsRunning, lockPath)
	}
	return lock.Unlock, nil
}
