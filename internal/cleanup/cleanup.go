// SPDX-License-Identifier: MPL-2.0

// Package cleanup tracks temporary files and directories created during a
// single pipeline run and deletes them when the run ends. Deletion is
// best-effort: failures are logged as warnings and never returned, so
// cleanup can never mask the primary operation's outcome.
package cleanup

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Tracker records temporary resources for exactly-once deletion in reverse
// order of registration. It is owned by a single invocation and is not safe
// for concurrent use; the pipeline is strictly sequential.
type Tracker struct {
	logger *log.Logger
	files  []string
	dirs   []string
	closed bool
}

// NewTracker creates a Tracker that reports deletion failures on logger.
func NewTracker(logger *log.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// TrackFile registers a temporary file for deletion at Close.
func (t *Tracker) TrackFile(path string) {
	t.files = append(t.files, path)
}

// TrackDir registers a temporary directory for deletion at Close.
// Files are always deleted before directories, so a tracked file inside a
// tracked directory is removed first.
func (t *Tracker) TrackDir(path string) {
	t.dirs = append(t.dirs, path)
}

// Close deletes every tracked file, then every tracked directory, each in
// reverse order of registration. Repeated calls are no-ops: each resource is
// attempted exactly once.
func (t *Tracker) Close() {
	if t.closed {
		return
	}
	t.closed = true

	for i := len(t.files) - 1; i >= 0; i-- {
		if err := removeFile(t.files[i]); err != nil {
			t.logger.Warn("failed to delete temporary file", "path", t.files[i], "error", err)
		}
	}
	for i := len(t.dirs) - 1; i >= 0; i-- {
		if err := removeDir(t.dirs[i]); err != nil {
			t.logger.Warn("failed to delete temporary directory", "path", t.dirs[i], "error", err)
		}
	}
}

// removeFile deletes a file, clearing a read-only attribute and retrying
// once if the first attempt is refused.
func removeFile(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}

	if chmodErr := clearReadOnly(path); chmodErr != nil {
		return err
	}
	return os.Remove(path)
}

// removeDir deletes a directory tree. If the plain removal is refused, it
// walks the tree depth-first clearing read-only attributes on children, then
// removes the directory again.
func removeDir(path string) error {
	err := os.RemoveAll(path)
	if err == nil {
		return nil
	}

	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}
		_ = clearReadOnly(p) // best effort per entry
		return nil
	})
	if walkErr != nil {
		return err
	}
	return os.RemoveAll(path)
}

// clearReadOnly adds the owner-write bit so a subsequent delete can succeed.
func clearReadOnly(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.Chmod(path, info.Mode().Perm()|0o200)
}
