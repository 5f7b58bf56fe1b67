package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bordeux/rpm-repo/internal/models"
)

// Filename is the manifest file kept in the output directory. It is the
// source of truth for which packages are published, independent of the
// repodata generated by createrepo.
const Filename = "packages.json"

// Manifest is the persisted package inventory.
type Manifest struct {
	Packages []models.Package `json:"packages"`
	Updated  string           `json:"updated"`
}

// Load reads the manifest from the output directory. A missing file is the
// first run and yields an empty manifest, not an error.
func Load(outputDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, Filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Manifest{}, nil
		}
		return nil, &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("read manifest: %w", err)}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("parse manifest: %w", err)}
	}
	return &m, nil
}

// Save rewrites the whole manifest. The manifest is never patched in place;
// the reconciler computes the full replacement set first.
func Save(outputDir string, packages []models.Package) error {
	m := Manifest{
		Packages: packages,
		Updated:  time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("marshal manifest: %w", err)}
	}

	path := filepath.Join(outputDir, Filename)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("write manifest: %w", err)}
	}
	return nil
}

// ListPackageFiles returns the .rpm filenames currently present in the
// packages directory. A missing directory yields an empty list.
func ListPackageFiles(packagesDir string) ([]string, error) {
	entries, err := os.ReadDir(packagesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("read packages dir: %w", err)}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".rpm" {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// SweepPartials removes .part leftovers of interrupted downloads from the
// packages directory. They never appear in the manifest or in
// ListPackageFiles, so nothing else would ever clean them up. Returns the
// removed filenames.
func SweepPartials(packagesDir string) ([]string, error) {
	entries, err := os.ReadDir(packagesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("read packages dir: %w", err)}
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".part") {
			continue
		}
		if err := os.Remove(filepath.Join(packagesDir, entry.Name())); err != nil {
			return removed, &models.RepoError{Type: models.ErrFileOp, Err: fmt.Errorf("remove partial download: %w", err)}
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
