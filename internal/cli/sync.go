package cli

import (
	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/bordeux/rpm-repo/internal/fetch"
	"github.com/bordeux/rpm-repo/internal/github"
	"github.com/bordeux/rpm-repo/internal/index"
	"github.com/bordeux/rpm-repo/internal/rpmtool"
	"github.com/bordeux/rpm-repo/internal/sign"
	"github.com/bordeux/rpm-repo/internal/sync"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command
func NewSyncCmd() *cobra.Command {
	var opts sync.Options

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch releases and regenerate the repository",
		Long: `Fetches the configured projects' releases, downloads new .rpm packages,
reconciles them with the existing repository contents and regenerates
the repository metadata.

Individual project or package failures are logged and skipped; only
configuration errors abort the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			engine := buildEngine(cfg, &opts)
			return engine.Run(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "repo", "Output directory for the repository")
	cmd.Flags().StringVarP(&opts.ProjectFilter, "project", "p", "", "Process only one project (name or owner/repo)")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Show what would be done without downloading")
	cmd.Flags().StringVarP(&opts.GPGKey, "gpg-key", "k", "", "GPG key ID used for signing")
	cmd.Flags().StringVar(&opts.GPGKeyFile, "gpg-key-file", "", "Sign with this private key file instead of the gpg binary")
	cmd.Flags().StringVar(&opts.GPGPassphrase, "gpg-passphrase", "", "Passphrase for --gpg-key-file")
	cmd.Flags().BoolVar(&opts.NoSign, "no-sign", false, "Skip GPG signing")
	cmd.Flags().IntVar(&opts.PageSize, "per-page", github.DefaultPageSize, "Releases fetched per project")

	return cmd
}

// buildEngine wires the real collaborators. Missing binaries degrade to
// fallbacks or to warnings; none of them abort the run.
func buildEngine(cfg *config.Config, opts *sync.Options) *sync.Engine {
	client := github.NewClient("")

	engine := &sync.Engine{
		Provider:   client,
		Downloader: fetch.NewDownloader(client.Token()),
		Inspector:  rpmtool.NewInspector(),
		Indexer:    index.NewIndexer(),
	}

	if opts.NoSign {
		return engine
	}

	// Package signing needs an explicit key identity; without one the run
	// stays unsigned rather than feeding gpg an empty -u.
	if cfg.Settings.SignPackages && opts.GPGKey != "" {
		signer, err := rpmtool.NewPackageSigner(opts.GPGKey)
		if err != nil {
			logrus.Warnf("Package signing unavailable: %v", err)
		} else {
			engine.PackageSigner = signer
		}
	} else if cfg.Settings.SignPackages {
		logrus.Warn("sign_packages is enabled but no --gpg-key was given, packages stay unsigned")
	}

	metaSigner, err := sign.NewMetadataSigner(opts.GPGKey, opts.GPGKeyFile, opts.GPGPassphrase)
	if err != nil {
		logrus.Warnf("Metadata signing unavailable: %v", err)
	} else {
		engine.MetaSigner = metaSigner
	}

	return engine
}
