package index

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/bordeux/rpm-repo/internal/models"
	"github.com/sirupsen/logrus"
)

// Indexer turns the packages directory into queryable repository metadata
// (the repodata/ tree consumed by dnf and yum).
type Indexer interface {
	Index(ctx context.Context, packagesDir string, packages []models.Package) error
}

const indexTimeout = 5 * time.Minute

// candidateBinaries are probed in order; createrepo_c is the modern
// implementation and preferred.
var candidateBinaries = []string{"createrepo_c", "createrepo"}

// NewIndexer returns a createrepo-backed indexer when one of the binaries is
// installed, falling back to the built-in generator otherwise.
func NewIndexer() Indexer {
	for _, name := range candidateBinaries {
		if _, err := exec.LookPath(name); err == nil {
			return &binaryIndexer{binary: name}
		}
	}
	logrus.Warn("createrepo binary not found, using built-in metadata generator")
	return &builtinIndexer{}
}

// binaryIndexer shells out to createrepo in update mode.
type binaryIndexer struct {
	binary string
}

func (b *binaryIndexer) Index(ctx context.Context, packagesDir string, _ []models.Package) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.binary, "--update", packagesDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &models.RepoError{
			Type:    models.ErrIndexing,
			Subject: packagesDir,
			Err:     fmt.Errorf("%s: %w: %s", b.binary, err, out),
		}
	}
	return nil
}
