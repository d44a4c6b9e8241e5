// cmd/stampver/version.go
package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// buildNumberEpoch anchors the computed build number: the build
// component defaults to whole days elapsed since this date.
var buildNumberEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var errPatternNotRecognized = errors.New("no recognizable version declaration in metadata file")

var (
	fullVersionRe     = regexp.MustCompile(`(?i)\[assembly:\s*AssemblyVersion\(\s*"(\d+)\.(\d+)\.(\d+)\.(\d+)"\s*\)\]`)
	wildcardVersionRe = regexp.MustCompile(`(?i)\[assembly:\s*AssemblyVersion\(\s*"(\d+)\.(\d+)\.\*"\s*\)\]`)
)

// Version holds the four components carried through the pipeline.
type Version struct {
	Major    int
	Minor    int
	Build    int
	Revision int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// defaultBuildNumber counts whole days from the epoch to now, with now
// truncated to its calendar day first.
func defaultBuildNumber(now time.Time) int {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(buildNumberEpoch).Hours() / 24)
}

// extractVersion parses the located file content. A full
// major.minor.build.revision declaration wins; a major.minor.* wildcard
// declaration falls back to the computed build number and revision 0.
func extractVersion(content string, now time.Time) (Version, error) {
	if m := fullVersionRe.FindStringSubmatch(content); m != nil {
		return Version{
			Major:    mustAtoi(m[1]),
			Minor:    mustAtoi(m[2]),
			Build:    mustAtoi(m[3]),
			Revision: mustAtoi(m[4]),
		}, nil
	}
	if m := wildcardVersionRe.FindStringSubmatch(content); m != nil {
		return Version{
			Major: mustAtoi(m[1]),
			Minor: mustAtoi(m[2]),
			Build: defaultBuildNumber(now),
		}, nil
	}
	return Version{}, errPatternNotRecognized
}

// mustAtoi converts submatch text that already matched \d+.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Overrides carries the caller-supplied version parameters. Major,
// minor and build use negative values for "not supplied"; build 0
// forces recomputation of the day count. Revision at or below zero
// keeps the revision extracted from the file.
type Overrides struct {
	Major      int
	Minor      int
	Build      int
	Revision   int
	ForceZeros bool
}

// composeVersion merges the extracted version with the overrides, field
// by field. ForceZeros blanks major/minor/build after the merge and
// keeps only the final revision.
func composeVersion(extracted Version, ov Overrides, now time.Time) Version {
	v := extracted
	if ov.Major > 0 {
		v.Major = ov.Major
	}
	if ov.Minor > 0 {
		v.Minor = ov.Minor
	}
	switch {
	case ov.Build == 0:
		v.Build = defaultBuildNumber(now)
	case ov.Build > 0:
		v.Build = ov.Build
	}
	if ov.Revision > 0 {
		v.Revision = ov.Revision
	}
	if ov.ForceZeros {
		v.Major, v.Minor, v.Build = 0, 0, 0
	}
	return v
}
