// Package version exposes the version of the binaries, which is injected at build time via
// `-ldflags "-X gitlab.com/gitlab-org/sobfilter/internal/version.version=<version>"`.
package version

import (
	"fmt"
)

var version string

// GetVersionString returns a standard version header
func GetVersionString(binary string) string {
	return fmt.Sprintf("%s, version %v", binary, GetVersion())
}

// GetVersion returns the semver compatible version number, or "unknown" for development builds.
func GetVersion() string {
	if version == "" {
		return "unknown"
	}
	return version
}
