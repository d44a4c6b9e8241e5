// cmd/stampver/teamcity.go
package main

import (
	"fmt"
	"io"
	"strings"
)

// teamcityEscaper applies the service-message escaping rules, so an
// unexpected character in the version string cannot break the line the
// CI host scans.
var teamcityEscaper = strings.NewReplacer(
	"|", "||",
	"'", "|'",
	"\n", "|n",
	"\r", "|r",
	"[", "|[",
	"]", "|]",
)

// reportBuildNumber emits the single service-message line the CI host
// reads from build output to update its build-number display.
func reportBuildNumber(w io.Writer, version string) {
	fmt.Fprintf(w, "##teamcity[buildNumber '%s']\n", teamcityEscaper.Replace(version))
}
