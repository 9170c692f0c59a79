// SPDX-License-Identifier: MPL-2.0

package dscpack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dscpack-cli/internal/issue"
	"dscpack-cli/pkg/dscfile"
)

// stage builds the archive layout in a fresh temp directory: the
// configuration script at the root and one folder per resolved module.
// The directory is registered with the tracker before anything is
// copied into it.
func (p *Packager) stage(ctx context.Context, cfg *dscfile.Configuration) (string, error) {
	stagingDir, err := os.MkdirTemp("", "dscpack-staging-*")
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("stage configuration").
			WithCategory(issue.InvalidOperation).
			Wrap(fmt.Errorf("failed to create staging directory: %w", err)).
			BuildError()
	}
	p.Tracker.TrackDir(stagingDir)
	p.Logger.Debug("created staging directory", "path", stagingDir)

	scriptDest := filepath.Join(stagingDir, filepath.Base(cfg.Path))
	if err := copyFile(cfg.Path, scriptDest); err != nil {
		return "", issue.NewErrorContext().
			WithOperation("stage configuration").
			WithResource(cfg.Path).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}
	p.Logger.Debug("staged configuration script", "file", filepath.Base(cfg.Path))

	for _, name := range cfg.RequiredModules() {
		version := cfg.Requirements[name]
		moduleDir, err := p.Resolver.Resolve(ctx, name, version)
		if err != nil {
			return "", err
		}
		p.Logger.Debug("resolved module", "module", name, "version", version, "dir", moduleDir)

		if err := copyTree(moduleDir, filepath.Join(stagingDir, name)); err != nil {
			return "", issue.NewErrorContext().
				WithOperation("stage module").
				WithResource(moduleDir).
				WithCategory(issue.PermissionDenied).
				Wrap(err).
				BuildError()
		}
		p.Logger.Debug("staged module", "module", name)
	}

	return stagingDir, nil
}

// copyTree duplicates the directory tree at src under dst, preserving
// file permissions.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		target := filepath.Join(dst, relPath)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}
