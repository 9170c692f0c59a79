// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"dscpack-cli/internal/cleanup"
	"dscpack-cli/pkg/dscpack"

	"github.com/spf13/cobra"
)

var (
	archiveOutput string
	archiveForce  bool

	archiveCmd = &cobra.Command{
		Use:   "archive <configuration>",
		Short: "Package a DSC configuration and its modules into a ZIP",
		Long: `Package a DSC configuration script together with every DSC module it
imports into a single ZIP archive.

The script is scanned for Import-DscResource and #Requires -Modules
directives, the named modules are located on this machine, and the
archive is laid out with the script at its root and one folder per
module. PSDesiredStateConfiguration ships with the DSC runtime and is
never included.`,
		Args: cobra.ExactArgs(1),
		RunE: runArchive,
	}
)

func init() {
	archiveCmd.Flags().StringVarP(&archiveOutput, "output", "o", "", "archive path (default <configuration>.zip)")
	archiveCmd.Flags().BoolVarP(&archiveForce, "force", "f", false, "overwrite an existing archive")
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return failWith(err)
	}

	logger := newLogger()
	tracker := cleanup.NewTracker(logger)
	defer tracker.Close()

	packager := dscpack.NewPackager(moduleResolver(cfg), tracker, logger)
	res, err := packager.RunArchive(cmd.Context(), dscpack.ArchiveRequest{
		ConfigurationPath: args[0],
		OutputPath:        archiveOutput,
		Force:             archiveForce,
	})
	if err != nil {
		return failWith(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(),
		SuccessStyle.Render("✓")+" archive written: "+ValueStyle.Render(res.ArchivePath))
	if len(res.Modules) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(),
			SubtitleStyle.Render("  modules: "+strings.Join(res.Modules, ", ")))
	}
	return nil
}
