package cli

import (
	"fmt"

	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configured projects:")
			for _, p := range cfg.Projects {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s (name: %s, keep_versions: %d)\n",
					p.Repo, p.Name, p.KeepVersions)
			}
			return nil
		},
	}
}
