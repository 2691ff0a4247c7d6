package camelleaked

import (
	"fmt"
	"path/filepath"

	"github.com/camel-leaked/camel-leaked/internal/detectors"
	"github.com/camel-leaked/camel-leaked/internal/engine"
	"github.com/camel-leaked/camel-leaked/internal/rules"
	"github.com/spf13/cobra"
)

const defaultBaseline = "camel-leaked.baseline.json"

// Detection flags shared by every command that builds an engine.
var (
	flagPath       string
	flagRules      string
	flagMinEntropy float64
	flagMinLength  int
	flagNoEntropy  bool
	flagInclude    string
	flagExclude    string
	flagBaseline   string
)

func addDetectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "repository or directory root")
	cmd.Flags().StringVar(&flagRules, "rules", "", "rules file (YAML, JSON or TOML); built-in rules when unset")
	cmd.Flags().Float64Var(&flagMinEntropy, "min-entropy", detectors.DefaultMinEntropy, "entropy threshold in bits per char; 0 reports every candidate")
	cmd.Flags().IntVar(&flagMinLength, "min-length", detectors.DefaultMinLength, "minimum candidate length")
	cmd.Flags().BoolVar(&flagNoEntropy, "no-entropy", false, "disable the entropy detector")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "baseline file of accepted findings (default "+defaultBaseline+")")
}

// settings is the resolved configuration of one command run:
// CLI > local config > global config > defaults.
type settings struct {
	Root         string
	RulesFile    string
	Entropy      detectors.EntropyConfig
	NoEntropy    bool
	Walk         engine.WalkConfig
	NoColor      bool
	BaselinePath string
	Webhooks     []string
	NotifyToken  string
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	root, err := filepath.Abs(flagPath)
	if err != nil {
		return settings{}, err
	}
	local, global := loadConfigs(root)

	st := settings{
		Root:      root,
		RulesFile: pickString(flagRules, local.Rules, global.Rules),
		Entropy: detectors.EntropyConfig{
			MinEntropy: pickSet(cmd.Flags().Changed("min-entropy"), flagMinEntropy, local.MinEntropy, global.MinEntropy, detectors.DefaultMinEntropy),
			MinLength:  pickSet(cmd.Flags().Changed("min-length"), flagMinLength, local.MinLength, global.MinLength, detectors.DefaultMinLength),
		},
		NoEntropy: pickBool(flagNoEntropy, local.NoEntropy, global.NoEntropy),
		Walk: engine.WalkConfig{
			Root:         root,
			IncludeGlobs: pickString(flagInclude, local.Include, global.Include),
			ExcludeGlobs: pickString(flagExclude, local.Exclude, global.Exclude),
		},
		NoColor:     pickBool(flagNoColor, local.NoColor, global.NoColor),
		NotifyToken: local.NotifyToken(),
	}
	if cmd.Flags().Lookup("max-bytes") != nil {
		st.Walk.MaxBytes = pickInt64(flagMaxBytes, local.MaxBytes, global.MaxBytes)
		st.Walk.DefaultExcludes = pickSet(cmd.Flags().Changed("default-excludes"), flagDefaultExcludes, local.DefaultExcludes, global.DefaultExcludes, true)
	}
	if st.NotifyToken == "" {
		st.NotifyToken = global.NotifyToken()
	}
	st.Webhooks = append(local.Webhooks(), global.Webhooks()...)

	st.BaselinePath = pickString(flagBaseline, local.Baseline, global.Baseline)
	if st.BaselinePath == "" {
		st.BaselinePath = defaultBaseline
	}
	if !filepath.IsAbs(st.BaselinePath) {
		st.BaselinePath = filepath.Join(root, st.BaselinePath)
	}
	if rel, err := filepath.Rel(root, st.BaselinePath); err == nil {
		st.Walk.SkipFiles = []string{filepath.ToSlash(rel)}
	}
	if st.RulesFile != "" && !filepath.IsAbs(st.RulesFile) && !cmd.Flags().Changed("rules") {
		// config-file paths are relative to the scanned root
		st.RulesFile = filepath.Join(root, st.RulesFile)
	}
	return st, nil
}

// loadRules returns the rule set named by the settings, or the built-in
// rules.
func (st settings) loadRules() (*rules.Set, error) {
	if st.RulesFile == "" {
		return rules.Default(), nil
	}
	set, err := rules.LoadFile(st.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", st.RulesFile, err)
	}
	return set, nil
}

func (st settings) newEngine() (*engine.Engine, error) {
	set, err := st.loadRules()
	if err != nil {
		return nil, err
	}
	opt := engine.WithEntropy(st.Entropy)
	if st.NoEntropy {
		opt = engine.WithoutEntropy()
	}
	return engine.New(set, opt, engine.WithLogger(logger)), nil
}
