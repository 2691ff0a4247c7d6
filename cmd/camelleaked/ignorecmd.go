package camelleaked

import (
	"fmt"
	"path/filepath"

	"github.com/camel-leaked/camel-leaked/internal/ignore"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{Use: "ignore", Short: "Manage the " + ignore.FileName + " file"}
	rootCmd.AddCommand(cmd)

	var root string
	add := &cobra.Command{
		Use:   "add PATTERN...",
		Short: "Stop scanning paths matching PATTERN",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			for _, p := range args {
				added, err := ignore.Append(abs, p)
				if err != nil {
					return fmt.Errorf("add %q: %w", p, err)
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", p)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Already ignored: %s\n", p)
				}
			}
			return nil
		},
	}
	add.Flags().StringVarP(&root, "path", "p", ".", "directory holding the ignore file")
	cmd.AddCommand(add)
}
