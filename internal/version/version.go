package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// These variables can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/rokuctl/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/rokuctl/internal/version.Commit=abc123"
//
// Values left empty are filled from the module build info on first use.
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the git commit hash
	Commit = ""
	// Date is the build or commit date
	Date = ""
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	info     Info
	infoOnce sync.Once
)

// Get returns the version information, resolving it once
func Get() Info {
	infoOnce.Do(func() {
		info = resolve(Version, Commit, Date, readBuildInfo)
	})
	return info
}

func readBuildInfo() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

func resolve(version, commit, date string, read func() (*debug.BuildInfo, bool)) Info {
	out := Info{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := read(); ok {
		if out.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			out.Version = bi.Main.Version
		}

		var revision, modified, vcsTime string
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			case "vcs.time":
				vcsTime = setting.Value
			}
		}

		if out.Commit == "" && revision != "" {
			if len(revision) > 7 {
				revision = revision[:7]
			}
			out.Commit = revision
			if modified == "true" {
				out.Commit += "-dirty"
			}
		}
		if out.Date == "" && vcsTime != "" {
			if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
				out.Date = t.Format("2006-01-02")
			}
		}
	}

	if out.Version == "" {
		out.Version = "dev"
		if out.Date != "" {
			out.Version += "-" + out.Date
		}
	}
	if out.Commit == "" {
		out.Commit = "unknown"
	}
	return out
}

// String returns the short version
func (i Info) String() string {
	return i.Version
}

// Full returns the version string including commit and platform
func (i Info) Full() string {
	return fmt.Sprintf("%s (commit: %s, %s, %s)", i.Version, i.Commit, i.GoVersion, i.Platform)
}

// Full returns Get().Full()
func Full() string {
	return Get().Full()
}
