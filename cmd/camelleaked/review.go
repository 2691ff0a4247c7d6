package camelleaked

import (
	"fmt"

	"github.com/camel-leaked/camel-leaked/internal/audit"
	"github.com/camel-leaked/camel-leaked/internal/cache"
	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/camel-leaked/camel-leaked/internal/tui"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Browse the last scan's findings interactively",
		Long: `review opens the findings of the last scan of --path in a terminal UI where
they can be filtered, copied, exported and accepted into the baseline.`,
		Args: cobra.NoArgs,
		RunE: runReview,
	}
	addDetectionFlags(cmd)
	addWalkFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	st, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	last, err := cache.LoadResults(st.Root)
	if err != nil {
		return fmt.Errorf("no previous scan of %s; run 'camel-leaked scan' or 'camel-leaked scan-files' first", st.Root)
	}
	base, err := report.LoadBaseline(st.BaselinePath)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Baseline:     base,
		BaselinePath: st.BaselinePath,
		Timestamp:    last.Timestamp,
		Audit:        audit.New(st.Root),
		Prefs:        tui.LoadPrefs(),
	}
	// Only tree scans can be repeated; a diff read from stdin is gone.
	if last.Source == "files" {
		opts.Rescan = func() ([]types.Finding, error) {
			eng, err := st.newEngine()
			if err != nil {
				return nil, err
			}
			res, err := scanTree(cmd, st, eng)
			if err != nil {
				return nil, err
			}
			if err := cache.SaveResults(st.Root, "files", res.Findings); err != nil {
				logger.Sugar().Warnf("save results: %v", err)
			}
			return res.Findings, nil
		}
	}
	return tui.Run(last.Findings, opts)
}
