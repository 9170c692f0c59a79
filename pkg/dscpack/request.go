// SPDX-License-Identifier: MPL-2.0

package dscpack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dscpack-cli/internal/issue"
)

// ZipSuffix is the archive extension produced and, in upload mode,
// accepted as a pre-built input.
const ZipSuffix = ".zip"

// scriptExtensions are the configuration script types the parser
// understands.
var scriptExtensions = []string{".ps1", ".psm1"}

// ArchiveRequest describes an archive-only run.
type ArchiveRequest struct {
	// ConfigurationPath is the DSC script to package.
	ConfigurationPath string

	// OutputPath is where the archive is written. Empty defaults to the
	// configuration path with ".zip" appended.
	OutputPath string

	// Force overwrites an existing archive at OutputPath.
	Force bool
}

// PublishRequest describes an upload run. SourcePath may be a script,
// which is packaged first, or a ready-made ZIP, which is uploaded as-is.
// Blob overwrite policy is the Publisher's concern, not the request's.
type PublishRequest struct {
	SourcePath string

	// BlobName overrides the blob name. Empty defaults to the archive
	// file name.
	BlobName string
}

// ValidateArchiveRequest normalizes req in place. Both paths come out
// absolute and the configuration must exist with an allowed extension.
func ValidateArchiveRequest(req *ArchiveRequest) error {
	path, err := validateConfiguration(req.ConfigurationPath, scriptExtensions)
	if err != nil {
		return err
	}
	req.ConfigurationPath = path

	out := req.OutputPath
	if out == "" {
		out = path + ZipSuffix
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("validate request").
			WithResource(out).
			WithCategory(issue.InvalidArgument).
			Wrap(fmt.Errorf("failed to resolve output path: %w", err)).
			BuildError()
	}
	req.OutputPath = absOut
	return nil
}

// ValidatePublishRequest normalizes req in place. A ".zip" source is
// accepted in addition to the script extensions.
func ValidatePublishRequest(req *PublishRequest) error {
	allowed := append([]string{ZipSuffix}, scriptExtensions...)
	path, err := validateConfiguration(req.SourcePath, allowed)
	if err != nil {
		return err
	}
	req.SourcePath = path
	if req.BlobName == "" {
		req.BlobName = filepath.Base(path)
		if !strings.EqualFold(filepath.Ext(path), ZipSuffix) {
			req.BlobName += ZipSuffix
		}
	}
	return nil
}

func validateConfiguration(path string, allowed []string) (string, error) {
	if path == "" {
		return "", issue.NewErrorContext().
			WithOperation("validate request").
			WithCategory(issue.InvalidArgument).
			Wrap(fmt.Errorf("configuration path cannot be empty")).
			BuildError()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("validate request").
			WithResource(path).
			WithCategory(issue.InvalidArgument).
			Wrap(fmt.Errorf("failed to resolve configuration path: %w", err)).
			BuildError()
	}

	ext := filepath.Ext(abs)
	if !extensionAllowed(ext, allowed) {
		return "", issue.NewErrorContext().
			WithOperation("validate request").
			WithResource(abs).
			WithCategory(issue.InvalidArgument).
			WithSuggestion(fmt.Sprintf("Use a configuration with one of these extensions: %s",
				strings.Join(allowed, ", "))).
			Wrap(fmt.Errorf("unsupported configuration extension %q", ext)).
			BuildError()
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", issue.NewErrorContext().
				WithOperation("validate request").
				WithResource(abs).
				WithCategory(issue.InvalidArgument).
				Wrap(fmt.Errorf("configuration does not exist")).
				BuildError()
		}
		return "", issue.NewErrorContext().
			WithOperation("validate request").
			WithResource(abs).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}
	if info.IsDir() {
		return "", issue.NewErrorContext().
			WithOperation("validate request").
			WithResource(abs).
			WithCategory(issue.InvalidArgument).
			Wrap(fmt.Errorf("configuration is a directory, expected a file")).
			BuildError()
	}

	return abs, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
