// Package version carries the build provenance stamped in via -ldflags.
package version

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Full is the one-line form the -version flag prints.
func Full() string {
	return Version + " (commit " + Commit + ", built " + Date + ")"
}
