package camelleaked

import (
	"context"
	"fmt"

	"github.com/camel-leaked/camel-leaked/internal/update"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version and whether a newer release exists",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "camel-leaked v%s\n", version)
			if flagNoUpdateCheck {
				return
			}
			if latest, newer, _ := update.Check(context.Background(), version, false); newer {
				fmt.Fprintf(cmd.OutOrStdout(), "v%s is available; run 'camel-leaked update'\n", latest)
			}
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Replace this binary with the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := selfUpdate()
			if err != nil {
				return fmt.Errorf("self-update: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated to v%s\n", v)
			return nil
		},
	})
}
