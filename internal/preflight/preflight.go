package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sponsorcut/internal/config"
	"sponsorcut/internal/encoding"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	results = append(results, CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir))
	results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))

	if profile, err := encoding.ParseProfile(cfg.Encoding.DefaultProfile); err == nil && profile == encoding.ProfileVAAPI {
		results = append(results, CheckDevice("VA-API device", cfg.Encoding.VAAPIDevice))
	}

	if cfg.SponsorBlock.Enabled {
		results = append(results, CheckSponsorBlock(ctx, cfg.SponsorBlock.BaseURL))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Err summarizes failed checks as one error, or nil when all passed.
// Optional checks (the SponsorBlock reachability probe) are ignored because
// a lookup failure only degrades a run.
func Err(results []Result) error {
	var problems []string
	for _, r := range Failed(results) {
		if r.Name == sponsorBlockCheckName {
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New("preflight failed: " + strings.Join(problems, "; "))
}
