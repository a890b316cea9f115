// Package version exposes build metadata stamped into the binary.
package version

import "runtime/debug"

// Version, Commit and Date are overridden at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = "<unknown>"
)

// InitBinaryVersion fills unset metadata from the embedded build info,
// so `go install` builds still report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && Commit == "<unknown>" {
			Commit = setting.Value
		}

		if setting.Key == "vcs.time" && Date == "<unknown>" {
			Date = setting.Value
		}
	}
}
