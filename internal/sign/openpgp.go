package sign

import (
	"bytes"
	"context"
	"crypto"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/bordeux/rpm-repo/internal/models"
)

// openpgpSigner signs metadata with a private key file, for hosts without a
// gpg installation (CI runners, containers).
type openpgpSigner struct {
	entity *openpgp.Entity
}

func newOpenpgpSigner(keyPath, passphrase string) (*openpgpSigner, error) {
	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("open key file: %w", err)}
	}
	defer keyFile.Close()

	// Armored first, binary as fallback.
	entityList, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		if _, serr := keyFile.Seek(0, 0); serr != nil {
			return nil, &models.RepoError{Type: models.ErrSigning, Err: serr}
		}
		entityList, err = openpgp.ReadKeyRing(keyFile)
		if err != nil {
			return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("read key: %w", err)}
		}
	}
	if len(entityList) == 0 {
		return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("no keys found in %s", keyPath)}
	}

	entity := entityList[0]
	if passphrase != "" {
		if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
			if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("decrypt private key: %w", err)}
			}
		}
		for _, subkey := range entity.Subkeys {
			if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
				if err := subkey.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
					return nil, &models.RepoError{Type: models.ErrSigning, Err: fmt.Errorf("decrypt subkey: %w", err)}
				}
			}
		}
	}

	return &openpgpSigner{entity: entity}, nil
}

func (s *openpgpSigner) SignDetached(_ context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Subject: path, Err: err}
	}

	var buf bytes.Buffer
	err = openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), &packet.Config{
		DefaultHash: crypto.SHA512,
	})
	if err != nil {
		return &models.RepoError{Type: models.ErrSigning, Subject: path, Err: fmt.Errorf("detached sign: %w", err)}
	}

	if err := os.WriteFile(path+".asc", buf.Bytes(), 0644); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Subject: path, Err: err}
	}
	return nil
}

func (s *openpgpSigner) ExportPublicKey(_ context.Context, dest string) error {
	var buf bytes.Buffer

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return &models.RepoError{Type: models.ErrSigning, Subject: dest, Err: err}
	}
	if err := s.entity.Serialize(w); err != nil {
		w.Close()
		return &models.RepoError{Type: models.ErrSigning, Subject: dest, Err: err}
	}
	if err := w.Close(); err != nil {
		return &models.RepoError{Type: models.ErrSigning, Subject: dest, Err: err}
	}

	if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Subject: dest, Err: err}
	}
	return nil
}
