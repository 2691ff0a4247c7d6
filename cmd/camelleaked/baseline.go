package camelleaked

import (
	"fmt"

	"github.com/camel-leaked/camel-leaked/internal/cache"
	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	var fromLast bool
	update := &cobra.Command{
		Use:   "update",
		Short: "Accept every current finding into the baseline",
		Long: `update rewrites the baseline file with all findings of a fresh tree scan
of --path, or of the last recorded scan with --from-last.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			var findings []types.Finding
			if fromLast {
				last, err := cache.LoadResults(st.Root)
				if err != nil {
					return fmt.Errorf("no previous scan of %s: %w", st.Root, err)
				}
				findings = last.Findings
			} else {
				eng, err := st.newEngine()
				if err != nil {
					return err
				}
				res, err := scanTree(cmd, st, eng)
				if err != nil {
					return err
				}
				findings = res.Findings
			}
			if err := report.SaveBaseline(st.BaselinePath, findings); err != nil {
				return err
			}
			logger.Info("baseline written", zap.String("path", st.BaselinePath), zap.Int("findings", len(findings)))
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d findings in %s\n", len(findings), st.BaselinePath)
			return nil
		},
	}
	addDetectionFlags(update)
	addWalkFlags(update)
	update.Flags().BoolVar(&fromLast, "from-last", false, "use the findings of the last scan instead of rescanning")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
