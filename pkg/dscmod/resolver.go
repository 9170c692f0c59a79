// SPDX-License-Identifier: MPL-2.0

package dscmod

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dscpack-cli/internal/issue"

	"github.com/Masterminds/semver/v3"
)

// Resolver locates the directory of an installed module. version is either
// an exact dotted version or "" for "any installed version".
type Resolver interface {
	Resolve(ctx context.Context, name, version string) (string, error)
}

// PathResolver scans a list of module roots. Each root may hold modules in
// two layouts:
//
//	<root>/<name>/dscmod.toml              (single installed version)
//	<root>/<name>/<version>/dscmod.toml    (side-by-side versions)
//
// With no version requested, the highest semantic version wins; roots are
// scanned in order and the first root containing the module is used.
type PathResolver struct {
	Roots []string
}

// NewPathResolver creates a PathResolver over the given roots.
func NewPathResolver(roots []string) *PathResolver {
	return &PathResolver{Roots: roots}
}

// Resolve implements Resolver.
func (r *PathResolver) Resolve(ctx context.Context, name, version string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, root := range r.Roots {
		moduleDir := filepath.Join(root, name)
		info, err := os.Stat(moduleDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", issue.NewErrorContext().
				WithOperation("resolve module").
				WithResource(moduleDir).
				WithCategory(issue.PermissionDenied).
				Wrap(err).
				BuildError()
		}
		if !info.IsDir() {
			continue
		}

		dir, err := r.pickVersion(moduleDir, name, version)
		if err != nil {
			return "", err
		}
		if dir != "" {
			return dir, nil
		}
	}

	msg := fmt.Errorf("module %q is not installed under any configured module path", name)
	if version != "" {
		msg = fmt.Errorf("module %q version %s is not installed under any configured module path", name, version)
	}
	return "", issue.NewErrorContext().
		WithOperation("resolve module").
		WithResource(name).
		WithCategory(issue.InvalidOperation).
		WithSuggestion("Install the module under one of the module_paths roots").
		Wrap(msg).
		BuildError()
}

// pickVersion selects the matching version directory under moduleDir, or
// returns "" when this root has no acceptable candidate.
func (r *PathResolver) pickVersion(moduleDir, name, version string) (string, error) {
	// Flat layout: the module directory itself carries the manifest.
	if IsModuleDir(moduleDir) {
		m, err := LoadManifest(moduleDir)
		if err != nil {
			return "", resolveManifestError(moduleDir, err)
		}
		if m.Name != name {
			return "", nil
		}
		if version == "" || m.Version == version {
			return moduleDir, nil
		}
		return "", nil
	}

	// Side-by-side layout: one subdirectory per version.
	entries, err := os.ReadDir(moduleDir)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("resolve module").
			WithResource(moduleDir).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}

	var best string
	var bestVersion *semver.Version
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(moduleDir, entry.Name())
		if !IsModuleDir(candidate) {
			continue
		}
		m, err := LoadManifest(candidate)
		if err != nil || m.Name != name {
			continue
		}

		if version != "" {
			if m.Version == version {
				return candidate, nil
			}
			continue
		}

		v, err := semver.NewVersion(m.Version)
		if err != nil {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best = candidate
			bestVersion = v
		}
	}
	return best, nil
}

func resolveManifestError(dir string, err error) error {
	return issue.NewErrorContext().
		WithOperation("resolve module").
		WithResource(dir).
		WithCategory(issue.InvalidOperation).
		Wrap(err).
		BuildError()
}
