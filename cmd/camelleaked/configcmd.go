package camelleaked

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/camel-leaked/camel-leaked/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .camel-leaked.yml with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := os.WriteFile(output, []byte(config.Template), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", output)
			return nil
		},
	}
	initCmd.Flags().StringVar(&output, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	var showGlobal bool
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print where configuration is read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showGlobal {
				p, err := config.GlobalPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			}
			for _, name := range config.LocalNames {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	pathCmd.Flags().BoolVar(&showGlobal, "global", false, "print the global config path")

	cfgCmd.AddCommand(initCmd, pathCmd)
}
