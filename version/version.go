package version

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running build.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date,omitempty"`
	Dirty     bool      `json:"dirty"`
}

// IsRelease reports whether the build carries a real version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty
}

// Short returns "<version>[-<commit>][-dirty]".
func (i Info) Short() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

func (i Info) String() string {
	s := fmt.Sprintf("graphkit %s (%s)", i.Short(), i.GoVersion)
	if !i.BuildDate.IsZero() {
		s += " built " + i.BuildDate.UTC().Format(time.RFC3339)
	}
	return s
}

// Write prints i to w as one line of text or as JSON.
func (i Info) Write(w io.Writer, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, i.String())
		return err
	}
	return json.NewEncoder(w).Encode(i)
}

// Get returns the build information.
func Get() Info {
	return resolve(debug.ReadBuildInfo())
}

func resolve(build *debug.BuildInfo, ok bool) Info {
	info := Info{Version: Version, GitCommit: GitCommit}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}
	if !ok || build == nil {
		return info
	}

	info.GoVersion = build.GoVersion
	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuildDate.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildDate = t
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}
