// Package version resolves the build version reported by the CLI.
package version

import "runtime/debug"

// Version is stamped at release time via
// -ldflags "-X github.com/rafflehq/orderops/pkg/version.Version=v1.2.3".
var Version = ""

const devVersion = "dev"

// GetVersion returns the stamped release version, falling back to the module
// version recorded in build info, then to "dev" for local builds.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}

	return devVersion
}
