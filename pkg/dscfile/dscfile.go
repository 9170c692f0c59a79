// SPDX-License-Identifier: MPL-2.0

package dscfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"dscpack-cli/internal/issue"
)

// BuiltinModule is supplied by the DSC runtime itself and is never staged
// into an archive, even when a configuration declares it as a dependency.
const BuiltinModule = "PSDesiredStateConfiguration"

// Configuration is a parsed DSC script: its path and the modules it
// requires. A requirement maps the module name to a version string, or to
// "" when any installed version will do.
type Configuration struct {
	Path         string
	Requirements map[string]string
}

// RequiredModules returns the module names in deterministic (sorted) order.
func (c *Configuration) RequiredModules() []string {
	names := make([]string, 0, len(c.Requirements))
	for name := range c.Requirements {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse reads a configuration script and extracts its module requirements.
// All directive errors are collected and reported together as a ParserError;
// a file that cannot be read reports PermissionDenied. BuiltinModule is
// removed from the result.
func Parse(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read configuration").
			WithResource(path).
			WithCategory(issue.PermissionDenied).
			WithSuggestion("Check read permission on the configuration file").
			Wrap(err).
			BuildError()
	}
	defer f.Close() //nolint:errcheck // read-only handle

	reqs := make(map[string]string)
	var parseErrs []error

	addRequirement := func(line int, name, version string) {
		existing, seen := reqs[name]
		switch {
		case !seen:
			reqs[name] = version
		case version == "" || existing == version:
			// Unversioned repeat or exact repeat: nothing new.
		case existing == "":
			reqs[name] = version
		default:
			parseErrs = append(parseErrs, fmt.Errorf(
				"line %d: module %q required with conflicting versions %s and %s",
				line, name, existing, version))
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inBlockComment := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		line, inBlockComment = stripBlockComment(line, inBlockComment)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case hasFoldPrefix(trimmed, "#requires"):
			parseRequiresDirective(trimmed, lineNo, addRequirement, &parseErrs)
		case strings.HasPrefix(trimmed, "#"):
			// Ordinary comment.
		default:
			if idx := indexFold(trimmed, "Import-DscResource"); idx >= 0 {
				parseImportDirective(trimmed[idx:], lineNo, addRequirement, &parseErrs)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read configuration").
			WithResource(path).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}

	if len(parseErrs) > 0 {
		return nil, issue.NewErrorContext().
			WithOperation("parse configuration").
			WithResource(path).
			WithCategory(issue.ParserError).
			WithSuggestion("Fix every listed directive and run again").
			Wrap(errors.Join(parseErrs...)).
			BuildError()
	}

	// The runtime always supplies the latest built-in module.
	delete(reqs, BuiltinModule)

	return &Configuration{
		Path:         path,
		Requirements: reqs,
	}, nil
}
