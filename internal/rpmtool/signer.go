package rpmtool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/bordeux/rpm-repo/internal/models"
)

// PackageSigner embeds a GPG signature into .rpm files.
type PackageSigner interface {
	Sign(ctx context.Context, path string) error
}

const signTimeout = 2 * time.Minute

// NewPackageSigner returns a signer backed by `rpm --addsign`, or an error
// when no key identity is given or the rpm binary is not installed. keyID is
// required: `rpm --addsign` invokes gpg with -u "%{_gpg_name}", and an empty
// identity makes every signing call fail.
func NewPackageSigner(keyID string) (PackageSigner, error) {
	if keyID == "" {
		return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("no signing key configured")}
	}
	if _, err := exec.LookPath("rpm"); err != nil {
		return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("rpm binary not found: %w", err)}
	}
	return &addsignSigner{keyID: keyID}, nil
}

// addsignSigner signs via `rpm --addsign`, which reads the signing identity
// from ~/.rpmmacros. The macros file is swapped in for the duration of the
// call and the previous one restored afterwards.
type addsignSigner struct {
	keyID string
}

func (s *addsignSigner) Sign(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, signTimeout)
	defer cancel()

	restore, err := s.installMacros()
	if err != nil {
		return &models.RepoError{Type: models.ErrSigning, Subject: filepath.Base(path), Err: err}
	}
	defer restore()

	cmd := exec.CommandContext(ctx, "rpm", "--addsign", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &models.RepoError{
			Type:    models.ErrSigning,
			Subject: filepath.Base(path),
			Err:     fmt.Errorf("rpm --addsign: %w: %s", err, out),
		}
	}
	return nil
}

// installMacros writes a temporary ~/.rpmmacros with the signing identity
// and returns a function restoring the previous state.
func (s *addsignSigner) installMacros() (func(), error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	macrosPath := filepath.Join(home, ".rpmmacros")

	previous, err := os.ReadFile(macrosPath)
	hadPrevious := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	content := fmt.Sprintf("%%_gpg_name %s\n"+
		"%%__gpg_sign_cmd %%{__gpg} gpg --batch --no-armor --no-secmem-warning -u \"%%{_gpg_name}\" -sbo %%{__signature_filename} %%{__plaintext_filename}\n",
		s.keyID)
	if err := os.WriteFile(macrosPath, []byte(content), 0600); err != nil {
		return nil, err
	}

	return func() {
		if hadPrevious {
			os.WriteFile(macrosPath, previous, 0600)
		} else {
			os.Remove(macrosPath)
		}
	}, nil
}
