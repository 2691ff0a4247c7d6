package camelleaked

import (
	"io"
	"os"
	"runtime/debug"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/camel-leaked/camel-leaked/internal/update"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"golang.org/x/term"
)

// selfUpdate replaces the running binary with the latest GitHub release and
// returns the version installed.
func selfUpdate() (string, error) {
	v := version
	if info, ok := debug.ReadBuildInfo(); ok && v == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				v = s.Value
			}
		}
	}
	ver, err := semver.ParseTolerant(v)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	latest, err := selfupdate.UpdateSelf(semver3.MustParse(ver.String()), update.Repo)
	if err != nil {
		return "", err
	}
	return latest.Version.String(), nil
}

// colorEnabled reports whether w is a terminal that should receive ANSI
// colours.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickSet resolves a setting whose zero value is meaningful, so presence
// rather than value decides: an explicit flag, then local, then global,
// then def.
func pickSet[T any](changed bool, cli T, local, global *T, def T) T {
	if changed {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return def
}
