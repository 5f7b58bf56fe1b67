package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpm-repo",
		Short: "Generate an RPM repository from GitHub releases",
		Long: `rpm-repo builds and incrementally updates an RPM repository from the
.rpm assets attached to GitHub releases.

Each run downloads the selected versions for the configured projects,
preserves packages of projects it is not refreshing, regenerates the
repository metadata and optionally signs the result.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringP("config", "c", "projects.yaml", "Path to projects.yaml config file")

	rootCmd.AddCommand(NewSyncCmd())
	rootCmd.AddCommand(NewListCmd())

	return rootCmd
}
