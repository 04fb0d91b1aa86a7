package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release of the dashboard server and ibexctl
	Version = "1.2.0"

	// APIVersion versions the JSON API and the websocket messages
	APIVersion = "v1"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/trazeinos/ibex35-dashboard/pkg/contracts.GitCommit=$(git rev-parse --short HEAD)"
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version and printed by ibexctl version
type VersionInfo struct {
	Version      string `json:"version"`
	APIVersion   string `json:"api_version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		APIVersion:   APIVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}

// String renders the info on one line, e.g.
// "v1.2.0 (api v1, commit abc123, built unknown, go1.24.3 linux/amd64)".
func (v VersionInfo) String() string {
	return fmt.Sprintf("v%s (api %s, commit %s, built %s, %s %s/%s)",
		v.Version, v.APIVersion, v.GitCommit, v.BuildTime, v.GoVersion, v.OS, v.Architecture)
}
