package repofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/bordeux/rpm-repo/internal/models"
)

// KeyFilename returns the public key filename for a repository name, e.g.
// RPM-GPG-KEY-github-packages.
func KeyFilename(name string) string {
	return "RPM-GPG-KEY-" + name
}

// Generate renders the .repo descriptor installed on client machines.
// hasKey reports whether a public key was exported; together with
// settings.SignPackages it selects one of three gpgcheck stanzas:
// unsigned, metadata-only signing, or full signing.
func Generate(settings config.Settings, hasKey bool) string {
	// baseurl must point at packages/, where repodata/ lives.
	packagesURL := strings.TrimRight(settings.BaseURL, "/") + "/packages"

	var gpgLines string
	if hasKey {
		keyURL := fmt.Sprintf("%s/%s", strings.TrimRight(settings.BaseURL, "/"), KeyFilename(settings.Name))
		if settings.SignPackages {
			gpgLines = fmt.Sprintf("gpgcheck=1\nrepo_gpgcheck=1\ngpgkey=%s", keyURL)
		} else {
			gpgLines = fmt.Sprintf("gpgcheck=0\nrepo_gpgcheck=1\ngpgkey=%s", keyURL)
		}
	} else {
		gpgLines = "gpgcheck=0"
	}

	return fmt.Sprintf(`[%s]
name=%s
baseurl=%s
enabled=1
%s
`, settings.Name, settings.Description, packagesURL, gpgLines)
}

// Write emits the descriptor as <name>.repo in the output directory.
func Write(outputDir string, settings config.Settings, hasKey bool) error {
	path := filepath.Join(outputDir, settings.Name+".repo")
	if err := os.WriteFile(path, []byte(Generate(settings, hasKey)), 0644); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Subject: path, Err: err}
	}
	return nil
}
