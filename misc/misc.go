// Package misc holds build time information about the program.
package misc

import (
	"runtime/debug"
)

var (
	// set by linker: -X docfrag/misc.version=...
	version = "dev"
	// set by linker: -X docfrag/misc.gitHash=...
	gitHash = ""
)

const appName = "docfrag"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns hash of the commit program was built from. When it was
// not set by linker we try VCS information embedded by the toolchain.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
