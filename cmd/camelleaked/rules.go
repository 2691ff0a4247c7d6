package camelleaked

import (
	"fmt"
	"sort"

	"github.com/camel-leaked/camel-leaked/internal/rules"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{Use: "rules", Short: "Inspect and validate rule files"}
	rootCmd.AddCommand(cmd)

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a rules file loads without error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := rules.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d rules\n", set.Count())
			return nil
		},
	}

	var listFile string
	var sorted bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the rules in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := rules.Default()
			if listFile != "" {
				var err error
				if set, err = rules.LoadFile(listFile); err != nil {
					return err
				}
			}
			rs := set.Rules()
			if sorted {
				sort.Slice(rs, func(i, j int) bool { return rs[i].Name < rs[j].Name })
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("NAME", "SEVERITY", "DESCRIPTION")
			for _, r := range rs {
				if err := table.Append([]string{r.Name, string(r.Severity), r.Description}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	list.Flags().StringVar(&listFile, "rules", "", "rules file to list instead of the built-in rules")
	list.Flags().BoolVar(&sorted, "sort", false, "sort by name instead of evaluation order")

	def := &cobra.Command{
		Use:   "default",
		Short: "Print the built-in rules document",
		Long:  "Print the built-in rules as YAML, a starting point for a custom rules file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(rules.DefaultSource())
			return err
		},
	}

	cmd.AddCommand(validate, list, def)
}
