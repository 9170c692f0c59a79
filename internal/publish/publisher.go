// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"dscpack-cli/internal/issue"

	"github.com/charmbracelet/log"
)

// ErrAborted is returned when the confirmation gate declines the
// upload. It carries no category: an aborted run is not a failure of
// the tool.
var ErrAborted = errors.New("upload aborted")

// BlobAPI is the narrow storage surface the publisher needs. The
// production implementation wraps the Azure SDK; tests substitute a
// fake.
type BlobAPI interface {
	// EnsureContainer creates the container if it does not exist.
	EnsureContainer(ctx context.Context, container string) error

	// BlobExists reports whether the named blob is present.
	BlobExists(ctx context.Context, container, name string) (bool, error)

	// Upload sends the file at path as the named blob, replacing any
	// existing content, and returns the blob URI.
	Upload(ctx context.Context, container, name, path string) (string, error)
}

// ConfirmFunc asks the user to approve an action described by prompt.
type ConfirmFunc func(prompt string) (bool, error)

// Publisher uploads one archive per call. The zero value is not
// usable; construct it with every field the caller decided on.
type Publisher struct {
	Blobs     BlobAPI
	Container string

	// Force replaces an existing blob instead of failing.
	Force bool

	// DryRun reports the would-be upload without contacting storage.
	DryRun bool

	// Confirm gates the upload. Nil means pre-approved.
	Confirm ConfirmFunc

	Logger *log.Logger
}

// Publish uploads archivePath as blobName. The confirmation gate runs
// before any remote call; a dry run stops there.
func (p *Publisher) Publish(ctx context.Context, archivePath, blobName string) (string, error) {
	action := fmt.Sprintf("upload %s to container %q as blob %q",
		filepath.Base(archivePath), p.Container, blobName)

	if p.DryRun {
		p.Logger.Info("dry run, skipping upload", "action", action)
		return "", nil
	}

	if p.Confirm != nil {
		approved, err := p.Confirm(action)
		if err != nil {
			return "", fmt.Errorf("confirmation failed: %w", err)
		}
		if !approved {
			return "", ErrAborted
		}
	}

	if err := p.Blobs.EnsureContainer(ctx, p.Container); err != nil {
		return "", err
	}

	exists, err := p.Blobs.BlobExists(ctx, p.Container, blobName)
	if err != nil {
		return "", err
	}
	if exists && !p.Force {
		return "", issue.NewErrorContext().
			WithOperation("upload archive").
			WithResource(blobName).
			WithCategory(issue.PermissionDenied).
			WithSuggestion("Pass --force to replace the existing blob").
			Wrap(fmt.Errorf("blob already exists in container %q", p.Container)).
			BuildError()
	}

	uri, err := p.Blobs.Upload(ctx, p.Container, blobName, archivePath)
	if err != nil {
		return "", err
	}
	p.Logger.Info("archive uploaded", "container", p.Container, "blob", blobName, "uri", uri)
	return uri, nil
}
