// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two dependency versions, returning -1, 0 or 1.
//
// Versions that both parse as semantic versions compare numerically, with
// pre-releases below the release. A valid semantic version outranks one
// that does not parse, two unparsable versions compare as strings, and an
// empty version ranks below everything.
func CompareVersions(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		// 1.0 and 1.0.0 are the same version; keep the order total.
		return strings.Compare(a, b)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// IsSemver reports whether v parses as a semantic version.
func IsSemver(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}

// highest returns the higher of a and b, preferring a on a tie.
func highest(a, b string) string {
	if CompareVersions(b, a) > 0 {
		return b
	}
	return a
}
