package camelleaked

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/camel-leaked/camel-leaked/internal/audit"
	"github.com/camel-leaked/camel-leaked/internal/cache"
	"github.com/camel-leaked/camel-leaked/internal/notify"
	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/camel-leaked/camel-leaked/internal/rules"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"github.com/camel-leaked/camel-leaked/internal/update"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Output and post-scan flags shared by scan and scan-files.
var (
	flagJSON        bool
	flagSARIF       bool
	flagText        bool
	flagShowSecrets bool
	flagNotify      []string
	flagAudit       bool
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit findings as JSON")
	cmd.Flags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	cmd.Flags().BoolVar(&flagText, "text", false, "plain text output instead of a table")
	cmd.Flags().BoolVar(&flagShowSecrets, "show-secrets", false, "print matched secrets unmasked")
	cmd.Flags().StringArrayVar(&flagNotify, "notify", nil, "POST new findings to this webhook URL (repeatable)")
	cmd.Flags().BoolVar(&flagAudit, "audit", false, "append a record of this scan to the audit log")
	cmd.MarkFlagsMutuallyExclusive("json", "sarif", "text")
}

func machineOutput() bool { return flagJSON || flagSARIF }

// scanOutcome is everything the post-scan pipeline needs from a scan.
type scanOutcome struct {
	Source       string // stdin, diff, staged, base, history, files
	Findings     []types.Finding
	Rules        []rules.Rule
	FilesScanned int
	Duration     time.Duration
}

// finish filters findings through the baseline, renders them, then runs
// the best-effort side effects (results cache, audit, notify). Failures of
// side effects are reported as warnings and never change the verdict.
func finish(cmd *cobra.Command, st settings, out scanOutcome) error {
	base, err := report.LoadBaseline(st.BaselinePath)
	if err != nil {
		return err
	}
	fresh := report.FilterNewFindings(out.Findings, base)

	if err := render(cmd.OutOrStdout(), st, out, fresh); err != nil {
		return err
	}

	var warn error
	// A piped diff cannot be rescanned, and --path often does not belong to
	// it, so its findings are not kept on disk.
	if out.Source != "stdin" {
		if err := cache.SaveResults(st.Root, out.Source, out.Findings); err != nil {
			warn = multierr.Append(warn, fmt.Errorf("save results: %w", err))
		}
	}
	if flagAudit {
		rec := audit.NewRecord(st.Root, out.Source, out.Findings, fresh, out.FilesScanned, out.Duration, st.BaselinePath)
		if id, err := audit.New(st.Root).Append(rec); err != nil {
			warn = multierr.Append(warn, err)
		} else {
			logger.Info("scan audited", zap.String("scan_id", id))
		}
	}
	recipients := notify.Recipients(append(st.Webhooks, flagNotify...)...)
	if len(recipients) > 0 {
		env := notify.NewEnvelope(st.Root, version, fresh)
		if err := notify.New(st.NotifyToken, logger).Send(cmd.Context(), recipients, env); err != nil {
			warn = multierr.Append(warn, err)
		}
	}
	for _, w := range multierr.Errors(warn) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}

	if report.ExitCode(fresh) != report.ExitClean {
		return errFindings
	}
	return nil
}

func render(w io.Writer, st settings, out scanOutcome, fresh []types.Finding) error {
	switch {
	case flagSARIF:
		return report.WriteSARIF(w, fresh, report.SARIFOptions{
			Version: version,
			Rules:   out.Rules,
			Stats:   map[string]int{"findings": len(out.Findings), "baselined": len(out.Findings) - len(fresh), "filesScanned": out.FilesScanned},
		})
	case flagJSON:
		return report.WriteJSON(w, fresh)
	}
	opts := report.PrintOptions{
		NoColor:      !colorEnabled(w, st.NoColor),
		Duration:     out.Duration,
		FilesScanned: out.FilesScanned,
		ShowSecrets:  flagShowSecrets,
	}
	if flagText {
		report.PrintText(w, fresh, opts)
		return nil
	}
	return report.PrintTable(w, fresh, opts)
}

// banner prints the update notice and scan header for humans.
func banner(cmd *cobra.Command, what string, ruleCount int) {
	if machineOutput() {
		return
	}
	errw := cmd.ErrOrStderr()
	if !flagNoUpdateCheck {
		if latest, newer, _ := update.Check(context.Background(), version, false); newer {
			fmt.Fprintf(errw, "(new version available: v%s)  run 'camel-leaked update' to upgrade\n", latest)
		}
	}
	fmt.Fprintf(errw, "Scanning %s with %d rules...\n", what, ruleCount)
}
