// SPDX-License-Identifier: MPL-2.0

package dscpack

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"dscpack-cli/internal/issue"
)

// CheckTarget verifies an archive may be written at path. An existing
// file fails unless force is set. The file itself is left untouched
// either way: a forced run replaces it only once the new archive has
// been fully written, so a failure later in the pipeline never costs
// the user their previous archive.
func CheckTarget(path string, force bool) error {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return issue.NewErrorContext().
			WithOperation("check archive target").
			WithResource(path).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}

	if !force {
		return issue.NewErrorContext().
			WithOperation("check archive target").
			WithResource(path).
			WithCategory(issue.PermissionDenied).
			WithSuggestion("Pass --force to overwrite the existing archive").
			Wrap(fmt.Errorf("archive already exists")).
			BuildError()
	}
	return nil
}

// buildArchive writes the staging directory's contents to a ZIP at
// outputPath. The archive is assembled in a temp file next to the
// target and renamed into place, so outputPath either keeps its old
// content or holds the complete new archive, never a partial one.
func buildArchive(stagingDir, outputPath string) (string, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outputPath), ".dscpack-*.zip.partial")
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("write archive").
			WithResource(outputPath).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}
	tmpPath := tmpFile.Name()

	if err := writeArchiveFile(tmpFile, stagingDir, outputPath); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close archive: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", issue.NewErrorContext().
			WithOperation("write archive").
			WithResource(outputPath).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}
	return outputPath, nil
}

// writeArchiveFile streams the staging tree into zipFile. Entry names
// mirror the paths relative to the staging root, so the configuration
// script lands at the archive root and each module keeps its own
// top-level folder.
func writeArchiveFile(zipFile *os.File, stagingDir, outputPath string) (err error) {
	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	walkErr := filepath.WalkDir(stagingDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, relErr := filepath.Rel(stagingDir, path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if relPath == "." {
			return nil
		}

		// Forward slashes for ZIP compatibility.
		zipPath := filepath.ToSlash(relPath)

		if d.IsDir() {
			_, createErr := zipWriter.Create(zipPath + "/")
			if createErr != nil {
				return fmt.Errorf("failed to create directory entry: %w", createErr)
			}
			return nil
		}

		fileData, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read file %s: %w", path, readErr)
		}

		fileInfo, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("failed to get file info: %w", infoErr)
		}

		header, headerErr := zip.FileInfoHeader(fileInfo)
		if headerErr != nil {
			return fmt.Errorf("failed to create file header: %w", headerErr)
		}
		header.Name = zipPath
		header.Method = zip.Deflate

		writer, writerErr := zipWriter.CreateHeader(header)
		if writerErr != nil {
			return fmt.Errorf("failed to create archive entry: %w", writerErr)
		}
		if _, writeErr := writer.Write(fileData); writeErr != nil {
			return fmt.Errorf("failed to write file data: %w", writeErr)
		}
		return nil
	})

	if walkErr != nil {
		return issue.NewErrorContext().
			WithOperation("write archive").
			WithResource(outputPath).
			WithCategory(issue.InvalidOperation).
			Wrap(walkErr).
			BuildError()
	}
	return nil
}
