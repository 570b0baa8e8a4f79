package version

import (
	"fmt"
	"strings"
	"sync"
)

const validBuildCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-."

const (
	appMajor uint = 0
	appMinor uint = 3
	appPatch uint = 0
)

// appBuild can be set at link time with
// -ldflags "-X github.com/witnessdag/witnessd/version.appBuild=foo".
// It is ignored unless it only holds validBuildCharacters.
var appBuild string

var (
	version     string
	versionOnce sync.Once
)

// Version returns the semantic version of witnessd, with the build
// metadata appended if there is any
func Version() string {
	versionOnce.Do(func() {
		version = fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
		if isValidBuild(appBuild) {
			version = fmt.Sprintf("%s+%s", version, appBuild)
		}
	})
	return version
}

func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	for _, r := range build {
		if !strings.ContainsRune(validBuildCharacters, r) {
			return false
		}
	}
	return true
}
