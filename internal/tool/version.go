package tool

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// MinimumVersion is the oldest command-line client release whose output
// grammars this package understands.
const MinimumVersion = "14.0.3"

// Only the first three segments are kept; some client builds append a
// datestamp segment that is not semver.
var versionBannerPattern = regexp.MustCompile(`[Vv]ersion\s+(\d+(?:\.\d+){0,2})`)

// ParseVersionBanner extracts the client version from its banner output,
// e.g. "Team Explorer Everywhere Command Line Client (version 14.134.0)".
func ParseVersionBanner(stdout string) (*semver.Version, error) {
	match := versionBannerPattern.FindStringSubmatch(stdout)
	if match == nil {
		return nil, &ParseError{Output: stdout, Err: fmt.Errorf("no version found in banner")}
	}
	v, err := semver.NewVersion(match[1])
	if err != nil {
		return nil, &ParseError{Output: stdout, Err: err}
	}
	return v, nil
}

// CheckVersion runs the client once and verifies it is at least
// MinimumVersion. Returns the detected version either way so callers can
// report it.
func CheckVersion(ctx context.Context, r Runner) (*semver.Version, error) {
	result, err := r.Run(ctx, []string{"version"}, "")
	if err != nil {
		return nil, &InvocationError{Err: err}
	}
	if result.ExitCode != 0 || result.Stderr != "" {
		return nil, &InvocationError{Stderr: result.Stderr, ExitCode: result.ExitCode}
	}

	v, err := ParseVersionBanner(result.Stdout)
	if err != nil {
		return nil, err
	}

	minimum := semver.MustParse(MinimumVersion)
	if v.LessThan(minimum) {
		return v, fmt.Errorf("client version %s is older than the minimum supported %s", v, minimum)
	}
	return v, nil
}
