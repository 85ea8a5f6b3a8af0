package deploydebug

import (
	"runtime/debug"
	"strconv"
)

// BuildCommit reports the stamped vcs.revision according to debug.ReadBuildInfo,
// with a " (dirty)" suffix when the working tree had uncommitted changes.
// Binaries built with "go run" report "unknown".
func BuildCommit() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	rev := "unknown"
	dirty := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty, _ = strconv.ParseBool(s.Value)
		}
	}

	if dirty {
		return rev + " (dirty)"
	}
	return rev
}

// DependencyVersion returns the version of module path the binary was built with.
func DependencyVersion(path string) (string, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, dep := range bi.Deps {
		if dep.Path == path {
			if dep.Replace != nil {
				return dep.Replace.Version, true
			}
			return dep.Version, true
		}
	}
	return "", false
}
