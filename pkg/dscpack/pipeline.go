// SPDX-License-Identifier: MPL-2.0

package dscpack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dscpack-cli/internal/cleanup"
	"dscpack-cli/internal/issue"
	"dscpack-cli/pkg/dscfile"
	"dscpack-cli/pkg/dscmod"

	"github.com/charmbracelet/log"
)

// Stage identifies how far a run progressed. Every run moves strictly
// forward through its stages; cleanup happens regardless of the last
// stage reached.
type Stage string

const (
	StageValidated  Stage = "validated"
	StageParsed     Stage = "parsed"
	StageStaged     Stage = "staged"
	StageArchived   Stage = "archived"
	StageAlreadyZip Stage = "already-zip"
	StageUploaded   Stage = "uploaded"
	StageDryRun     Stage = "dry-run"
	StageDone       Stage = "done"
)

// Publisher uploads a finished archive and returns the blob URI. A
// Publisher may decline the upload via its own confirmation gate, and
// returns an empty URI when a dry run skipped the upload entirely.
type Publisher interface {
	Publish(ctx context.Context, archivePath, blobName string) (string, error)
}

// Result reports what a run produced.
type Result struct {
	Stage       Stage
	ArchivePath string
	BlobURI     string
	Modules     []string
}

// Packager runs the packaging pipeline. All temp resources it creates
// are registered with Tracker; the caller owns the tracker's Close.
type Packager struct {
	Resolver dscmod.Resolver
	Tracker  *cleanup.Tracker
	Logger   *log.Logger
}

// NewPackager wires a Packager from its collaborators.
func NewPackager(resolver dscmod.Resolver, tracker *cleanup.Tracker, logger *log.Logger) *Packager {
	return &Packager{Resolver: resolver, Tracker: tracker, Logger: logger}
}

// RunArchive packages req.ConfigurationPath into req.OutputPath.
func (p *Packager) RunArchive(ctx context.Context, req ArchiveRequest) (*Result, error) {
	if err := ValidateArchiveRequest(&req); err != nil {
		return nil, err
	}
	res := &Result{Stage: StageValidated}
	p.Logger.Debug("request validated", "configuration", req.ConfigurationPath, "output", req.OutputPath)

	if err := CheckTarget(req.OutputPath, req.Force); err != nil {
		return res, err
	}

	if err := p.buildFromScript(ctx, req.ConfigurationPath, req.OutputPath, res); err != nil {
		return res, err
	}

	res.Stage = StageDone
	p.Logger.Info("archive written", "path", res.ArchivePath, "modules", len(res.Modules))
	return res, nil
}

// RunPublish packages req.SourcePath if needed, then hands the archive
// to publisher. A ".zip" source skips packaging entirely.
func (p *Packager) RunPublish(ctx context.Context, req PublishRequest, publisher Publisher) (*Result, error) {
	if err := ValidatePublishRequest(&req); err != nil {
		return nil, err
	}
	res := &Result{Stage: StageValidated}
	p.Logger.Debug("request validated", "source", req.SourcePath, "blob", req.BlobName)

	if strings.EqualFold(filepath.Ext(req.SourcePath), ZipSuffix) {
		res.Stage = StageAlreadyZip
		res.ArchivePath = req.SourcePath
		p.Logger.Debug("source is already an archive, skipping packaging")
	} else {
		target, err := p.tempArchiveTarget()
		if err != nil {
			return res, err
		}
		if err := p.buildFromScript(ctx, req.SourcePath, target, res); err != nil {
			return res, err
		}
	}

	uri, err := publisher.Publish(ctx, res.ArchivePath, req.BlobName)
	if err != nil {
		return res, err
	}
	if uri == "" {
		// Dry run: nothing was confirmed and nothing left the machine.
		res.Stage = StageDryRun
		return res, nil
	}
	res.Stage = StageUploaded
	res.BlobURI = uri

	res.Stage = StageDone
	return res, nil
}

// buildFromScript runs parse, stage and archive for a script source,
// advancing res as it goes.
func (p *Packager) buildFromScript(ctx context.Context, scriptPath, target string, res *Result) error {
	cfg, err := dscfile.Parse(scriptPath)
	if err != nil {
		return err
	}
	res.Stage = StageParsed
	res.Modules = cfg.RequiredModules()
	p.Logger.Debug("configuration parsed", "modules", strings.Join(res.Modules, ", "))

	stagingDir, err := p.stage(ctx, cfg)
	if err != nil {
		return err
	}
	res.Stage = StageStaged

	archivePath, err := buildArchive(stagingDir, target)
	if err != nil {
		return err
	}
	res.Stage = StageArchived
	res.ArchivePath = archivePath
	p.Logger.Debug("archive built", "path", archivePath)
	return nil
}

// tempArchiveTarget reserves a tracked temp file path for an archive
// built on the way to an upload. Only the name is needed; the file is
// removed so the writer can create it fresh.
func (p *Packager) tempArchiveTarget() (string, error) {
	tmp, err := os.CreateTemp("", "dscpack-*.zip")
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("create archive target").
			WithCategory(issue.InvalidOperation).
			Wrap(fmt.Errorf("failed to create temp archive: %w", err)).
			BuildError()
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp archive: %w", err)
	}
	p.Tracker.TrackFile(path)
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to reset temp archive: %w", err)
	}
	return path, nil
}
