// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"dscpack-cli/internal/issue"

	"github.com/Masterminds/semver/v3"
)

// CheckToolVersion enforces the min_tool_version precondition: when the
// config names a minimum version and the running build is older, the run
// stops before doing any work. Development builds ("dev") always pass.
func CheckToolVersion(cfg *Config, current string) error {
	if cfg == nil || cfg.MinToolVersion == "" || current == "dev" {
		return nil
	}

	minimum, err := semver.NewVersion(cfg.MinToolVersion)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("validate configuration").
			WithCategory(issue.InvalidArgument).
			WithSuggestion("min_tool_version must be a semantic version like \"1.2.0\"").
			Wrap(fmt.Errorf("invalid min_tool_version %q: %w", cfg.MinToolVersion, err)).
			BuildError()
	}

	running, err := semver.NewVersion(current)
	if err != nil {
		// Unparseable build metadata; don't block the user on it.
		return nil
	}

	if running.LessThan(minimum) {
		return issue.NewErrorContext().
			WithOperation("check tool version").
			WithCategory(issue.PreconditionFailure).
			WithSuggestion("Upgrade dscpack to " + cfg.MinToolVersion + " or newer").
			Wrap(fmt.Errorf("dscpack %s is older than required minimum %s", current, cfg.MinToolVersion)).
			BuildError()
	}

	return nil
}
