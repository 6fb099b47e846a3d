// Package version exposes the build identity stamped in at link time.
package version

// BuildInfo is the payload the meta endpoints report.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info snapshots the linker-set variables below.
func Info() BuildInfo {
	// Set via -ldflags "-X 'fieldops/internal/core/version.version=v0.0.1'
	// -X 'fieldops/internal/core/version.commit=abcd' -X 'fieldops/internal/core/version.date=2026-08-25'"
	return BuildInfo{
		Service: "fieldops-api",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
