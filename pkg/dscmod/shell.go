// SPDX-License-Identifier: MPL-2.0

package dscmod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"dscpack-cli/internal/issue"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ShellResolver delegates module lookup to a user-configured shell command
// executed by the embedded interpreter. The command receives the module in
// DSC_MODULE_NAME and DSC_MODULE_VERSION (empty for "any version") and must
// print the module directory on stdout; a nonzero exit means "not found".
type ShellResolver struct {
	// Command is the shell snippet to run.
	Command string
}

// NewShellResolver creates a ShellResolver running command.
func NewShellResolver(command string) *ShellResolver {
	return &ShellResolver{Command: command}
}

// Resolve implements Resolver.
func (r *ShellResolver) Resolve(ctx context.Context, name, version string) (string, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(r.Command), "resolver")
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("resolve module").
			WithResource(name).
			WithCategory(issue.InvalidOperation).
			WithSuggestion("Check resolver.shell_command for shell syntax errors").
			Wrap(fmt.Errorf("failed to parse resolver command: %w", err)).
			BuildError()
	}

	env := append(os.Environ(),
		"DSC_MODULE_NAME="+name,
		"DSC_MODULE_VERSION="+version,
	)

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &stdout, &stderr),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create resolver interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return "", issue.NewErrorContext().
				WithOperation("resolve module").
				WithResource(name).
				WithCategory(issue.InvalidOperation).
				Wrap(fmt.Errorf("resolver command exited with status %d: %s",
					int(exitStatus), strings.TrimSpace(stderr.String()))).
				BuildError()
		}
		return "", fmt.Errorf("resolver command failed: %w", err)
	}

	dir := strings.TrimSpace(stdout.String())
	if dir == "" {
		return "", issue.NewErrorContext().
			WithOperation("resolve module").
			WithResource(name).
			WithCategory(issue.InvalidOperation).
			Wrap(fmt.Errorf("resolver command printed no path for module %q", name)).
			BuildError()
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", issue.NewErrorContext().
			WithOperation("resolve module").
			WithResource(name).
			WithCategory(issue.InvalidOperation).
			Wrap(fmt.Errorf("resolver command printed %q, which is not a directory", dir)).
			BuildError()
	}

	return dir, nil
}
