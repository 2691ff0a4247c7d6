package camelleaked

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/camel-leaked/camel-leaked/internal/engine"
	"github.com/camel-leaked/camel-leaked/internal/git"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDiffFile string
	flagBase     string
	flagStaged   bool
	flagHistory  int
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the added lines of a unified diff",
		Long: `Scan reports secrets introduced by a unified diff. The diff is read from
--diff (a file, or - for stdin), computed from git with --base, --staged or
--history, or read from stdin when no source is given.`,
		Example: `  git diff | camel-leaked scan
  camel-leaked scan --base main --sarif > findings.sarif
  camel-leaked scan --staged --no-entropy`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	addDetectionFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().StringVar(&flagDiffFile, "diff", "", "read the diff from this file (- for stdin)")
	cmd.Flags().StringVar(&flagBase, "base", "", "scan changes of HEAD since its merge base with this ref")
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "scan staged changes")
	cmd.Flags().IntVar(&flagHistory, "history", 0, "scan the patches of the last N commits")
	cmd.MarkFlagsMutuallyExclusive("diff", "base", "staged", "history")
}

func runScan(cmd *cobra.Command, _ []string) error {
	st, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	eng, err := st.newEngine()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	started := time.Now()

	var findings []types.Finding
	source := "diff"
	switch {
	case flagBase != "":
		source = "base"
		banner(cmd, "changes since "+flagBase, len(eng.Rules()))
		text, err := git.DiffAgainst(ctx, st.Root, flagBase)
		if err != nil {
			return err
		}
		findings = eng.ScanDiff(text)
	case flagStaged:
		source = "staged"
		banner(cmd, "staged changes", len(eng.Rules()))
		text, err := git.StagedDiff(ctx, st.Root)
		if err != nil {
			return err
		}
		findings = eng.ScanDiff(text)
	case flagHistory > 0:
		source = "history"
		banner(cmd, fmt.Sprintf("the last %d commits", flagHistory), len(eng.Rules()))
		patches, err := git.HistoryPatches(ctx, st.Root, flagHistory)
		if err != nil {
			return err
		}
		findings = []types.Finding{}
		for _, p := range patches {
			fs := eng.ScanDiff(p.Patch)
			logger.Debug("commit scanned", zap.String("commit", p.Hash), zap.Int("findings", len(fs)))
			findings = append(findings, fs...)
		}
	default:
		if flagDiffFile == "" || flagDiffFile == "-" {
			source = "stdin"
		}
		text, err := readDiff(cmd, flagDiffFile)
		if err != nil {
			return err
		}
		findings = eng.ScanDiff(text)
	}

	return finish(cmd, st, scanOutcome{
		Source:   source,
		Findings: engine.FilterPaths(findings, st.Walk),
		Rules:    eng.Rules(),
		Duration: time.Since(started),
	})
}

func readDiff(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("diff file %s does not exist", path)
		}
		return "", fmt.Errorf("read diff: %w", err)
	}
	return string(b), nil
}
