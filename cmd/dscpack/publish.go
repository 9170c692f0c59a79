// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dscpack-cli/internal/cleanup"
	"dscpack-cli/internal/config"
	"dscpack-cli/internal/publish"
	"dscpack-cli/pkg/dscpack"

	"github.com/spf13/cobra"
)

// ConnectionStringEnvVar overrides the configured storage connection
// string without putting credentials in a config file.
const ConnectionStringEnvVar = "DSCPACK_STORAGE_CONNECTION_STRING"

var (
	publishContainer        string
	publishConnectionString string
	publishBlobName         string
	publishForce            bool
	publishYes              bool
	publishDryRun           bool

	publishCmd = &cobra.Command{
		Use:   "publish <configuration|archive>",
		Short: "Package a DSC configuration and upload it to Azure Blob Storage",
		Long: `Package a DSC configuration script and upload the resulting archive to
an Azure Blob Storage container. A ready-made ZIP is uploaded as-is.

The upload asks for confirmation unless --yes is given; --dry-run
reports what would be uploaded without contacting storage. Without
--force an existing blob of the same name is left untouched and the
command fails.`,
		Args: cobra.ExactArgs(1),
		RunE: runPublish,
	}
)

func init() {
	publishCmd.Flags().StringVarP(&publishContainer, "container", "c", "", "blob container (default "+config.DefaultContainerName+")")
	publishCmd.Flags().StringVar(&publishConnectionString, "connection-string", "", "Azure Storage connection string (default $"+ConnectionStringEnvVar+")")
	publishCmd.Flags().StringVar(&publishBlobName, "blob-name", "", "blob name (default archive file name)")
	publishCmd.Flags().BoolVarP(&publishForce, "force", "f", false, "replace an existing blob")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "skip the upload confirmation prompt")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "report the would-be upload without performing it")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return failWith(err)
	}

	logger := newLogger()
	tracker := cleanup.NewTracker(logger)
	defer tracker.Close()

	container := publishContainer
	if container == "" {
		container = cfg.ContainerName
	}
	if container == "" {
		container = config.DefaultContainerName
	}

	publisher := &publish.Publisher{
		Blobs:     publish.NewAzureBlobs(resolveConnectionString(cfg)),
		Container: container,
		Force:     publishForce,
		DryRun:    publishDryRun,
		Logger:    logger,
	}
	if !publishYes && !publishDryRun {
		publisher.Confirm = confirmPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	packager := dscpack.NewPackager(moduleResolver(cfg), tracker, logger)
	res, err := packager.RunPublish(cmd.Context(), dscpack.PublishRequest{
		SourcePath: args[0],
		BlobName:   publishBlobName,
	}, publisher)
	if err != nil {
		if errors.Is(err, publish.ErrAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("upload aborted"))
			return &ExitError{Code: 1}
		}
		return failWith(err)
	}

	if res.Stage == dscpack.StageDryRun {
		fmt.Fprintln(cmd.OutOrStdout(),
			SubtitleStyle.Render("dry run, nothing uploaded"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(),
		SuccessStyle.Render("✓")+" uploaded to "+ValueStyle.Render(res.BlobURI))
	return nil
}

// resolveConnectionString picks the storage connection string in flag,
// environment, config order.
func resolveConnectionString(cfg *config.Config) string {
	if publishConnectionString != "" {
		return publishConnectionString
	}
	if cs := os.Getenv(ConnectionStringEnvVar); cs != "" {
		return cs
	}
	return cfg.Storage.ConnectionString
}

// confirmPrompt asks the user to approve an upload on out and reads the
// answer from in. Anything but an explicit yes declines.
func confirmPrompt(in io.Reader, out io.Writer) publish.ConfirmFunc {
	return func(action string) (bool, error) {
		fmt.Fprintf(out, "%s %s %s ", WarningStyle.Render("About to"), action, SubtitleStyle.Render("[y/N]:"))
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}
