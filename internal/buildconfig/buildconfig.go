package buildconfig

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the build version.
func Version() string {
	return version
}

// Commit returns the git commit hash.
func Commit() string {
	return commit
}

// VersionInfo returns version and commit for the metrics endpoint.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}
