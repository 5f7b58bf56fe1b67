package sign

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/bordeux/rpm-repo/internal/models"
)

// MetadataSigner creates detached signatures over repository metadata and
// exports the public verification key. Implementations are capabilities: the
// orchestrator works with a nil signer when signing is off or unavailable.
type MetadataSigner interface {
	// SignDetached writes an armored detached signature next to path,
	// suffixed ".asc".
	SignDetached(ctx context.Context, path string) error

	// ExportPublicKey writes armored public key material to dest.
	ExportPublicKey(ctx context.Context, dest string) error
}

const gpgTimeout = 60 * time.Second

// NewMetadataSigner picks a signer implementation: a key file yields the
// built-in openpgp signer, otherwise the gpg binary is used when installed.
// keyID may be empty, meaning the default gpg identity.
func NewMetadataSigner(keyID, keyFile, passphrase string) (MetadataSigner, error) {
	if keyFile != "" {
		return newOpenpgpSigner(keyFile, passphrase)
	}
	if _, err := exec.LookPath("gpg"); err != nil {
		return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("gpg binary not found: %w", err)}
	}
	return &gpgSigner{keyID: keyID}, nil
}

// gpgSigner shells out to the gpg binary.
type gpgSigner struct {
	keyID string
}

func (g *gpgSigner) SignDetached(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, gpgTimeout)
	defer cancel()

	args := []string{"--batch", "--yes", "--detach-sign", "--armor"}
	if g.keyID != "" {
		args = append(args, "--local-user", g.keyID)
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, "gpg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &models.RepoError{
			Type:    models.ErrSigning,
			Subject: path,
			Err:     fmt.Errorf("gpg --detach-sign: %w: %s", err, out),
		}
	}
	return nil
}

func (g *gpgSigner) ExportPublicKey(ctx context.Context, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, gpgTimeout)
	defer cancel()

	args := []string{"--armor", "--export"}
	if g.keyID != "" {
		args = append(args, g.keyID)
	}

	cmd := exec.CommandContext(ctx, "gpg", args...)
	out, err := cmd.Output()
	if err != nil {
		return &models.RepoError{Type: models.ErrSigning, Subject: dest, Err: fmt.Errorf("gpg --export: %w", err)}
	}
	if len(out) == 0 {
		return &models.RepoError{Type: models.ErrSigning, Subject: dest, Err: fmt.Errorf("gpg --export produced no key material")}
	}

	if err := os.WriteFile(dest, out, 0644); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Subject: dest, Err: err}
	}
	return nil
}
