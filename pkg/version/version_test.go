package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	v, c, b := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = v, c, b })
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-03-01T12:30:00+02:00"},
		{Key: "vcs.tag", Value: "v1.4.0"},
		{Key: "vcs.modified", Value: "true"},
	}}

	info := fromBuildInfo(bi)
	require.Equal(t, "1.4.0-dirty", info.Version)
	require.Equal(t, "0123456", info.Commit)
	require.Equal(t, "2026-03-01T10:30:00Z", info.BuildTime)

	require.Equal(t, buildInfo{}, fromBuildInfo(nil))
}

func TestPopulateKeepsLdflags(t *testing.T) {
	restore(t)
	Version, Commit, BuildTime = "2.0.0", "", ""

	populate(buildInfo{Version: "1.0.0", Commit: "abc1234"})
	require.Equal(t, "2.0.0", Version)
	require.Empty(t, Commit)
}

func TestFormatVersion(t *testing.T) {
	restore(t)

	tests := []struct {
		version, commit, built string
		want                   string
	}{
		{"", "", "", "0.0.0-dev (development)"},
		{"1.2.3", "abc1234", "", "1.2.3 (commit: abc1234)"},
		{"1.2.3", "abc1234", "2026-01-02T03:04:05Z", "1.2.3 (commit: abc1234, built at: 2026-01-02T03:04:05Z)"},
		{"1.2.3", "", "2026-01-02T03:04:05Z", "1.2.3 (built at: 2026-01-02T03:04:05Z)"},
	}
	for _, tt := range tests {
		Version, Commit, BuildTime = tt.version, tt.commit, tt.built
		require.Equal(t, tt.want, FormatVersion())
	}
}
