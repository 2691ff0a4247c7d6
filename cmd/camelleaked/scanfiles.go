package camelleaked

import (
	"fmt"

	"github.com/camel-leaked/camel-leaked/internal/cache"
	"github.com/camel-leaked/camel-leaked/internal/engine"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagMaxBytes        int64
	flagDefaultExcludes bool
	flagNoCache         bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan-files",
		Short: "Scan every line of the files under a directory",
		Long: `scan-files treats each text file under --path as newly added and reports
secrets anywhere in it. Unchanged files reuse the findings of the previous
run unless --no-cache is given or the rules changed.`,
		Args: cobra.NoArgs,
		RunE: runScanFiles,
	}
	rootCmd.AddCommand(cmd)

	addDetectionFlags(cmd)
	addOutputFlags(cmd)
	addWalkFlags(cmd)
}

func addWalkFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", engine.DefaultMaxBytes, "skip files larger than this")
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "skip vendored, build and binary-asset paths")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable the incremental scan cache")
}

func runScanFiles(cmd *cobra.Command, _ []string) error {
	st, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	eng, err := st.newEngine()
	if err != nil {
		return err
	}
	res, err := scanTree(cmd, st, eng)
	if err != nil {
		return err
	}
	return finish(cmd, st, scanOutcome{
		Source:       "files",
		Findings:     res.Findings,
		Rules:        eng.Rules(),
		FilesScanned: res.FilesScanned,
		Duration:     res.Duration,
	})
}

// scanTree runs a cached tree scan of st.Root.
func scanTree(cmd *cobra.Command, st settings, eng *engine.Engine) (engine.Result, error) {
	var db *cache.DB
	if !flagNoCache {
		var err error
		db, err = cache.Load(st.Root, eng.Fingerprint())
		if err != nil {
			logger.Debug("starting with an empty cache", zap.Error(err))
		}
	}
	banner(cmd, st.Root, len(eng.Rules()))
	res, err := engine.ScanTree(cmd.Context(), eng, st.Walk, db)
	if err != nil {
		return res, fmt.Errorf("scan %s: %w", st.Root, err)
	}
	if db != nil {
		if err := cache.Save(st.Root, db); err != nil {
			logger.Warn("could not save cache", zap.Error(err))
		}
	}
	return res, nil
}
