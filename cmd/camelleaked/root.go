package camelleaked

import (
	"errors"
	"fmt"
	"os"

	"github.com/camel-leaked/camel-leaked/internal/config"
	"github.com/camel-leaked/camel-leaked/internal/logging"
	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagNoColor       bool
	flagLogLevel      string
	flagLogFile       string
	flagNoUpdateCheck bool

	version = "0.1.0"

	logger = zap.NewNop()
)

// errFindings is returned by scan commands that found new secrets. Execute
// maps it to exit code 1 without printing anything.
var errFindings = errors.New("findings present")

// rootCmd is the base Cobra command for the camel-leaked CLI.
var rootCmd = &cobra.Command{
	Use:           "camel-leaked",
	Short:         "Find secrets in diffs before they land",
	Long:          "camel-leaked scans unified diffs, staged changes and file trees for credentials using regex rules and an entropy detector.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

// Execute runs the camel-leaked CLI. It should be called by the main package.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute()))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return report.ExitClean
	case errors.Is(err, errFindings):
		return report.ExitFindings
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		return report.ExitError
	}
}

// setupLogging builds the process logger. Flags win over the local config
// of the working directory, which wins over the global config.
func setupLogging() error {
	local, global := loadConfigs(".")
	l, err := logging.New(logging.Options{
		Level:   pickString(flagLogLevel, local.LogLevel, global.LogLevel),
		File:    pickString(flagLogFile, local.LogFile, global.LogFile),
		NoColor: pickBool(flagNoColor, local.NoColor, global.NoColor),
	})
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// loadConfigs returns the local config of root and the global config. A
// missing file yields the zero config; a broken one is logged and ignored.
func loadConfigs(root string) (local, global config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		logger.Warn("ignoring global config", zap.Error(err))
	}
	if c, err := config.LoadLocal(root); err == nil {
		local = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		logger.Warn("ignoring local config", zap.Error(err))
	}
	return local, global
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (default warn)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "also write logs to this file (rotated)")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}
