package rpmtool

import (
	"testing"

	"github.com/bordeux/rpm-repo/internal/models"
	"github.com/stretchr/testify/require"
)

// An empty key identity must be rejected up front: rpm --addsign would
// invoke gpg with -u "" and fail on every package.
func TestNewPackageSignerRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewPackageSigner("")
	require.Error(t, err)

	var repoErr *models.RepoError
	require.ErrorAs(t, err, &repoErr)
	require.Equal(t, models.ErrSigning, repoErr.Type)
}
