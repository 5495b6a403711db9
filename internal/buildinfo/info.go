// Package buildinfo holds version information injected at build time.
package buildinfo

var (
	// Version is the semantic version, set via ldflags.
	Version = "dev"
	// Commit is the git commit hash, set via ldflags.
	Commit = "none"
	// Date is the build date, set via ldflags.
	Date = "unknown"
)
