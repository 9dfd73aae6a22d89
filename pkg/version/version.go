package version

import (
	"fmt"
	"runtime"
)

// Build information, set via ldflags:
//
//	-X github.com/medik8s/wdctl/pkg/version.GitDescribe=$(git describe --tags --dirty)
var (
	// GitCommit is the git commit SHA
	GitCommit = "unknown"
	// GitDescribe is the output of git describe --tags --dirty
	GitDescribe = "unknown"
	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// Info holds all the version information
type Info struct {
	GitCommit   string `json:"gitCommit"`
	GitDescribe string `json:"gitDescribe"`
	BuildDate   string `json:"buildDate"`
	GoVersion   string `json:"goVersion"`
	Platform    string `json:"platform"`
}

// Get returns the version information of the running binary
func Get() Info {
	return Info{
		GitCommit:   GitCommit,
		GitDescribe: GitDescribe,
		BuildDate:   BuildDate,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the --version line
func (i Info) String() string {
	return fmt.Sprintf("wdctl %s (commit %s, built %s, %s, %s)",
		i.GitDescribe, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// GetFormattedBuildInfo returns formatted build information for logging
func GetFormattedBuildInfo() string {
	return fmt.Sprintf("Build Info: %s", Get().String())
}
