// Package release classifies build version strings into release
// channels. Assertion failures and diagnostics behave differently on
// unreleased builds, so the classification sits on the error-handling
// path rather than in packaging tooling.
package release

import (
	"regexp"
	"strings"
)

// Channel identifies the release channel of a build.
type Channel string

const (
	// Stable is an exact X.Y.Z release.
	Stable Channel = "stable"
	// Beta is a prerelease carrying a -beta segment.
	Beta Channel = "beta"
	// Dev is any other build: unrecognized prereleases, raw commit
	// identifiers, local builds.
	Dev Channel = "dev"
)

var stablePattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ChannelFor classifies a version string.
func ChannelFor(version string) Channel {
	if stablePattern.MatchString(version) {
		return Stable
	}
	if strings.Contains(version, "-beta") {
		return Beta
	}
	return Dev
}

// IsReleased reports whether version corresponds to a build shipped to
// users. Dev builds fail fast on assertion failures; released builds
// degrade gracefully.
func IsReleased(version string) bool {
	return ChannelFor(version) != Dev
}
