package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/bordeux/rpm-repo/internal/fetch"
	"github.com/bordeux/rpm-repo/internal/github"
	"github.com/bordeux/rpm-repo/internal/manifest"
	"github.com/bordeux/rpm-repo/internal/models"
	"github.com/bordeux/rpm-repo/internal/repofile"
	"github.com/bordeux/rpm-repo/internal/rpmtool"
	"github.com/bordeux/rpm-repo/internal/selector"
	"github.com/bordeux/rpm-repo/internal/sign"
	"github.com/sirupsen/logrus"
)

// Provider lists releases and repository metadata for upstream projects.
type Provider interface {
	GetRepo(ctx context.Context, repo string) (*github.Repository, error)
	ListReleases(ctx context.Context, repo string, perPage int) ([]github.Release, error)
}

// Downloader fetches a release asset to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Indexer regenerates repository metadata for the packages directory.
type Indexer interface {
	Index(ctx context.Context, packagesDir string, packages []models.Package) error
}

// Options are the per-run parameters from the CLI.
type Options struct {
	OutputDir     string
	ProjectFilter string
	DryRun        bool
	NoSign        bool
	GPGKey        string
	GPGKeyFile    string
	GPGPassphrase string
	PageSize      int
}

// Engine runs one synchronization pass. All external collaborators are
// injected so the reconciliation flow is testable without network, gpg or
// rpm installed.
type Engine struct {
	Provider      Provider
	Downloader    Downloader
	Inspector     rpmtool.Inspector
	PackageSigner rpmtool.PackageSigner
	MetaSigner    sign.MetadataSigner
	Indexer       Indexer
}

// selectProjects applies the --project filter. An unmatched filter is a
// fatal configuration error.
func selectProjects(projects []config.Project, filter string) ([]config.Project, error) {
	if filter == "" {
		return projects, nil
	}
	var matched []config.Project
	for _, p := range projects {
		if p.Name == filter || p.Repo == filter {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		return nil, &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("project %q not found in config", filter),
		}
	}
	return matched, nil
}

// Run executes a full synchronization pass: fetch, reconcile, publish.
// Per-project and per-package failures are logged and absorbed; only
// configuration problems surface as errors.
func (e *Engine) Run(ctx context.Context, cfg *config.Config, opts Options) error {
	projects, err := selectProjects(cfg.Projects, opts.ProjectFilter)
	if err != nil {
		return err
	}

	outputDir := opts.OutputDir
	packagesDir := filepath.Join(outputDir, "packages")

	if !opts.DryRun {
		lock, err := manifest.AcquireLock(outputDir)
		if err != nil {
			return err
		}
		defer lock.Release()

		if err := os.MkdirAll(packagesDir, 0755); err != nil {
			return &models.RepoError{Type: models.ErrFileOp, Err: err}
		}

		if swept, err := manifest.SweepPartials(packagesDir); err != nil {
			logrus.Warnf("Could not clean up partial downloads: %v", err)
		} else if len(swept) > 0 {
			logrus.Infof("Removed %d partial download(s)", len(swept))
		}
	}

	existing, err := manifest.Load(outputDir)
	if err != nil {
		return err
	}

	logrus.Infof("Processing %d project(s)", len(projects))

	// Projects whose refresh actually ran. A project whose release listing
	// failed is left out so its previous packages are preserved rather than
	// pruned by a transient provider error.
	updatedRepos := make(map[string]bool)
	keepOnEmpty := make(map[string]bool)
	var fetched []models.Package

	for _, project := range projects {
		logrus.Infof("Project: %s", project.Repo)

		releases, err := e.fetchProject(ctx, project, cfg.Settings, opts)
		if err != nil {
			logrus.Errorf("Skipping %s: %v", project.Repo, err)
			continue
		}

		updatedRepos[project.Repo] = true
		if project.KeepOnEmpty {
			keepOnEmpty[project.Repo] = true
		}

		if len(releases) == 0 {
			logrus.Warnf("No releases with .rpm packages found for %s", project.Repo)
			continue
		}

		for _, release := range releases {
			logrus.Infof("  Release %s (version %s)", release.Tag, release.Version)
			for _, pkg := range release.Packages {
				logrus.Infof("    - %s (%s)", pkg.Filename, pkg.Architecture)
				if opts.DryRun {
					continue
				}

				record, err := e.processPackage(ctx, pkg, packagesDir, cfg.Settings, opts)
				if err != nil {
					logrus.Errorf("    %v", err)
					continue
				}
				fetched = append(fetched, *record)
			}
		}
	}

	preserved := 0
	for _, pkg := range existing.Packages {
		if !updatedRepos[pkg.ProjectRepo] {
			preserved++
		}
	}
	if preserved > 0 {
		logrus.Infof("Preserving %d package(s) from other projects", preserved)
	}

	if opts.DryRun {
		logrus.Info("Dry run, no files written")
		return nil
	}

	onDisk, err := manifest.ListPackageFiles(packagesDir)
	if err != nil {
		return err
	}

	result := manifest.Reconcile(existing.Packages, updatedRepos, fetched, keepOnEmpty, onDisk)

	for _, name := range result.Deletions {
		if err := os.Remove(filepath.Join(packagesDir, name)); err != nil {
			logrus.Warnf("Failed to remove %s: %v", name, err)
		}
	}
	if len(result.Deletions) > 0 {
		logrus.Infof("Removed %d old package(s)", len(result.Deletions))
	}

	if err := manifest.Save(outputDir, result.Packages); err != nil {
		return err
	}

	e.publish(ctx, cfg.Settings, opts, outputDir, packagesDir, result.Packages)

	logrus.Infof("Repository generated in %s (%d packages)", outputDir, len(result.Packages))
	return nil
}

// fetchProject lists a project's releases and selects the publishable window.
func (e *Engine) fetchProject(ctx context.Context, project config.Project, settings config.Settings, opts Options) ([]models.Release, error) {
	releases, err := e.Provider.ListReleases(ctx, project.Repo, opts.PageSize)
	if err != nil {
		return nil, err
	}

	description := project.Description
	if description == "" {
		if repo, err := e.Provider.GetRepo(ctx, project.Repo); err == nil && repo.Description != "" {
			description = repo.Description
		} else {
			description = project.Name + " from GitHub"
		}
	}

	return selector.Select(releases, project, settings.AllowedArchitectures(), description), nil
}

// processPackage runs the download/sign/hash/inspect pipeline for one
// package and returns the finished record.
func (e *Engine) processPackage(ctx context.Context, pkg models.Package, packagesDir string, settings config.Settings, opts Options) (*models.Package, error) {
	dest := filepath.Join(packagesDir, pkg.Filename)

	downloaded := false
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		if err := e.Downloader.Download(ctx, pkg.URL, dest); err != nil {
			return nil, err
		}
		downloaded = true
	} else {
		logrus.Debugf("    %s already exists, skipping download", pkg.Filename)
	}

	// Signing mutates the file, so hash afterwards. Pre-existing files were
	// signed on the run that fetched them.
	if settings.SignPackages && !opts.NoSign && downloaded && e.PackageSigner != nil {
		if err := e.PackageSigner.Sign(ctx, dest); err != nil {
			return nil, err
		}
	}

	digest, size, err := fetch.SHA256File(dest)
	if err != nil {
		return nil, &models.RepoError{Type: models.ErrFileOp, Subject: pkg.Filename, Err: err}
	}
	pkg.SHA256 = digest
	pkg.Size = size

	if e.Inspector != nil {
		if info, err := e.Inspector.Inspect(ctx, dest); err != nil {
			logrus.Warnf("    Could not inspect %s: %v", pkg.Filename, err)
		} else {
			applyInfo(&pkg, info)
		}
	}

	return &pkg, nil
}

// applyInfo overlays inspector fields onto the record, keeping the known
// defaults for anything the header does not carry.
func applyInfo(pkg *models.Package, info *rpmtool.Info) {
	if info.Name != "" {
		pkg.Name = info.Name
	}
	if info.Summary != "" {
		pkg.Summary = info.Summary
	}
	if info.Description != "" {
		pkg.Description = info.Description
	}
	if info.License != "" {
		pkg.License = info.License
	}
	if info.Vendor != "" {
		pkg.Vendor = info.Vendor
	}
	if info.URL != "" {
		pkg.Homepage = info.URL
	}
}

// publish regenerates the index, signs it and emits the .repo descriptor.
// Every step is best-effort: the repository stays usable for direct
// downloads even when indexing or signing degrade.
func (e *Engine) publish(ctx context.Context, settings config.Settings, opts Options, outputDir, packagesDir string, packages []models.Package) {
	logrus.Info("Generating repository metadata")
	if e.Indexer != nil {
		if err := e.Indexer.Index(ctx, packagesDir, packages); err != nil {
			logrus.Warnf("Could not generate repository metadata: %v", err)
		}
	}

	hasKey := false
	repomdPath := filepath.Join(packagesDir, "repodata", "repomd.xml")
	if e.MetaSigner != nil && !opts.NoSign {
		if _, err := os.Stat(repomdPath); err == nil {
			if err := e.MetaSigner.SignDetached(ctx, repomdPath); err != nil {
				logrus.Warnf("Could not sign repository metadata: %v", err)
			} else {
				logrus.Info("Created repomd.xml.asc")
			}
		}

		keyPath := filepath.Join(outputDir, repofile.KeyFilename(settings.Name))
		if err := e.MetaSigner.ExportPublicKey(ctx, keyPath); err != nil {
			logrus.Warnf("Could not export public key: %v", err)
		} else {
			logrus.Infof("Exported public key to %s", repofile.KeyFilename(settings.Name))
			hasKey = true
		}
	}

	if err := repofile.Write(outputDir, settings, hasKey); err != nil {
		logrus.Warnf("Could not write .repo file: %v", err)
	} else {
		logrus.Infof("Created %s.repo", settings.Name)
	}
}
