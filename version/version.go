package version

import (
	"runtime/debug"
	"sync"
)

const modulePath = "github.com/kbukum/httptestkit"

// Version overrides the detected version when set at build time using
// -ldflags "-X github.com/kbukum/httptestkit/version.Version=v1.2.3".
var Version = ""

var buildVersion = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	return moduleVersion(info)
})

// moduleVersion finds the harness module in info, either as the main
// module or as a dependency of the test binary.
func moduleVersion(info *debug.BuildInfo) string {
	if info.Main.Path == modulePath && isRelease(info.Main.Version) {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path != modulePath {
			continue
		}
		if dep.Replace != nil {
			dep = dep.Replace
		}
		if isRelease(dep.Version) {
			return dep.Version
		}
	}
	return "dev"
}

func isRelease(v string) bool {
	return v != "" && v != "(devel)"
}

// Get returns the harness version, "dev" for local builds.
func Get() string {
	if Version != "" {
		return Version
	}
	return buildVersion()
}

// UserAgent returns the User-Agent sent by test clients that do not set one.
func UserAgent() string {
	return "httptestkit/" + Get()
}
