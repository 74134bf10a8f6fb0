package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const devVersion = "0.0.0-dev"

// Valores padrão (sobrescritos por ldflags ou por build info)
var (
	Version   = devVersion
	Commit    = ""
	BuildTime = ""
)

// buildInfo is what the Go toolchain embedded about the VCS state.
type buildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// fromBuildInfo lê vcs.revision, vcs.time, vcs.modified e vcs.tag.
func fromBuildInfo(bi *debug.BuildInfo) buildInfo {
	var info buildInfo
	if bi == nil {
		return info
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; len(rev) >= 7 {
		info.Commit = rev[:7]
	}
	if t := settings["vcs.time"]; t != "" {
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			info.BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	if tag := settings["vcs.tag"]; tag != "" {
		info.Version = strings.TrimPrefix(tag, "v")
		if strings.EqualFold(settings["vcs.modified"], "true") {
			info.Version += "-dirty"
		}
	} else if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = strings.TrimPrefix(v, "v")
	}
	return info
}

// populate fills the unset values. Values set with ldflags win.
func populate(info buildInfo) {
	if Version != "" && Version != devVersion {
		return
	}
	if Commit == "" {
		Commit = info.Commit
	}
	if BuildTime == "" {
		BuildTime = info.BuildTime
	}
	if info.Version != "" {
		Version = info.Version
	}
}

func init() {
	bi, _ := debug.ReadBuildInfo()
	populate(fromBuildInfo(bi))
}

// FormatVersion retorna a versão formatada com commit e build time.
// Ex.: "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)"
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = devVersion
	}

	switch {
	case Commit == "" && BuildTime == "":
		return fmt.Sprintf("%s (development)", ver)
	case Commit == "":
		return fmt.Sprintf("%s (built at: %s)", ver, BuildTime)
	case BuildTime != "":
		return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, Commit, BuildTime)
	default:
		return fmt.Sprintf("%s (commit: %s)", ver, Commit)
	}
}
