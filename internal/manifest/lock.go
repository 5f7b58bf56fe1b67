package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bordeux/rpm-repo/internal/models"
)

// LockFilename marks an in-progress run in the output directory. Concurrent
// invocations against the same output directory are unsupported; the marker
// makes the second one fail fast instead of silently interleaving.
const LockFilename = ".rpm-repo.lock"

// Lock is a held run lock.
type Lock struct {
	path string
}

// AcquireLock creates the lock marker exclusively. It fails when another run
// holds the lock, naming the file so a stale lock can be removed by hand.
func AcquireLock(outputDir string) (*Lock, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("create output dir: %w", err)}
	}

	path := filepath.Join(outputDir, LockFilename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &models.RepoError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("another run appears to be in progress; remove %s if it is stale", path),
			}
		}
		return nil, &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("create lock: %w", err)}
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return &Lock{path: path}, nil
}

// Release removes the lock marker.
func (l *Lock) Release() error {
	return os.Remove(l.path)
}
