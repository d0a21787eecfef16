// Package version carries build metadata injected at link time.
package version

// Populated via -ldflags "-X" in release builds; the zero values mark a
// local development build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the release version, commit hash and build date.
func Info() (version, commit, date string) {
	return Version, GitCommit, BuildDate
}
