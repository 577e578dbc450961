// Package version provides version information for fresh-init and the runtime
// version that generated projects depend on.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/mod/semver"
)

// Build-time variables set via ldflags.
var (
	// Version is the tool version.
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// RuntimeModule is the module path generated projects import.
const RuntimeModule = "github.com/Sumangal44/fresh"

// FallbackRuntimeVersion is required by generated projects when the tool
// itself was not built from a release.
const FallbackRuntimeVersion = "v0.1.0"

// Info contains version information.
type Info struct {
	Version        string `json:"version"`
	GitCommit      string `json:"gitCommit"`
	BuildDate      string `json:"buildDate"`
	GoVersion      string `json:"goVersion"`
	RuntimeVersion string `json:"runtimeVersion"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		RuntimeVersion: DefaultRuntimeVersion(),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)\nruntime: %s %s",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, RuntimeModule, i.RuntimeVersion)
}

// DefaultRuntimeVersion returns the runtime version generated projects
// require: the ldflags release version, else the module version recorded by
// `go install`, else FallbackRuntimeVersion.
func DefaultRuntimeVersion() string {
	if isRelease(Version) {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && isRelease(bi.Main.Version) {
		return bi.Main.Version
	}
	return FallbackRuntimeVersion
}

func isRelease(v string) bool {
	return semver.IsValid(v) && semver.Prerelease(v) == "" && semver.Build(v) == ""
}
