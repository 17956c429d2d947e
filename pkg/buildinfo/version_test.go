package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestGet(t *testing.T) {
	embedded := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		},
	}

	tests := []struct {
		name    string
		bi      *debug.BuildInfo
		version string
		want    Info
	}{
		{"no build info", nil, "dev", Info{"dev", "none", "unknown"}},
		{"embedded", embedded, "dev", Info{"v0.3.1", "abc123", "2024-05-01T10:00:00Z"}},
		{"ldflags win", embedded, "v1.0.0", Info{"v1.0.0", "abc123", "2024-05-01T10:00:00Z"}},
		{"devel module", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev", Info{"dev", "none", "unknown"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubBuildInfo(t, tt.bi)
			orig := Version
			Version = tt.version
			defer func() { Version = orig }()

			if got := Get(); got != tt.want {
				t.Errorf("Get() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	stubBuildInfo(t, nil)
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} version dev") {
		t.Errorf("Template() = %q", got)
	}
	if got := String(); !strings.Contains(got, "commit: none") {
		t.Errorf("String() = %q", got)
	}
}
