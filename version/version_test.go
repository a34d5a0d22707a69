package version

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestResolve_LdflagsWin(t *testing.T) {
	restore(t)
	Version, GitCommit, BuildTime = "v1.2.0", "abc1234", "2026-01-02T03:04:05Z"

	info := resolve(&debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffffffffffff"},
			{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
		},
	}, true)

	if info.GitCommit != "abc1234" {
		t.Errorf("expected ldflags commit, got %q", info.GitCommit)
	}
	if want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC); !info.BuildDate.Equal(want) {
		t.Errorf("expected ldflags build time, got %v", info.BuildDate)
	}
	if info.GoVersion != "go1.26.0" {
		t.Errorf("unexpected go version %q", info.GoVersion)
	}
	if !info.IsRelease() {
		t.Error("expected a release build")
	}
}

func TestResolve_VCSFallback(t *testing.T) {
	restore(t)
	Version, GitCommit, BuildTime = "dev", "", ""

	info := resolve(&debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}, true)

	if info.GitCommit != "0123456" {
		t.Errorf("expected a shortened commit, got %q", info.GitCommit)
	}
	if !info.Dirty || info.IsRelease() {
		t.Errorf("expected a dirty non-release build, got %+v", info)
	}
	if info.Short() != "dev-0123456-dirty" {
		t.Errorf("unexpected short version %q", info.Short())
	}
	if info.BuildDate.IsZero() {
		t.Error("expected the vcs time")
	}
}

func TestResolve_NoBuildInfo(t *testing.T) {
	restore(t)
	Version, GitCommit, BuildTime = "dev", "", "not-a-time"

	info := resolve(nil, false)
	if info.Short() != "dev" {
		t.Errorf("expected plain dev, got %q", info.Short())
	}
	if !info.BuildDate.IsZero() {
		t.Error("expected an unparsable build time to be ignored")
	}
}

func TestInfo_Write(t *testing.T) {
	info := Info{Version: "v1.0.0", GitCommit: "abc1234", GoVersion: "go1.26.0"}

	var text bytes.Buffer
	if err := info.Write(&text, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(text.String()); got != "graphkit v1.0.0-abc1234 (go1.26.0)" {
		t.Errorf("unexpected text %q", got)
	}

	var raw bytes.Buffer
	if err := info.Write(&raw, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["version"] != "v1.0.0" || decoded["git_commit"] != "abc1234" {
		t.Errorf("unexpected JSON %v", decoded)
	}
}

func TestGet(t *testing.T) {
	if Get().Version == "" {
		t.Error("expected a version")
	}
}
