// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for dscpack.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"dscpack-cli/internal/config"
	"dscpack-cli/internal/issue"
	"dscpack-cli/pkg/dscmod"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// loadedConfig is the configuration resolved by initRootConfig.
	loadedConfig *config.Config
	// versionCheckErr is a failed min_tool_version check, surfaced when a
	// subcommand actually runs.
	versionCheckErr error

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "dscpack",
		Short: "Package DSC configurations with their modules",
		Long: TitleStyle.Render("dscpack") + SubtitleStyle.Render(" - Package DSC configurations with their modules") + `

dscpack reads a Desired State Configuration script, collects the DSC
modules it imports, and bundles everything into a ZIP archive ready
for the Azure DSC extension. The archive can also be published
straight to an Azure Blob Storage container.

` + SubtitleStyle.Render("Examples:") + `
  dscpack archive WebServer.ps1                  Build WebServer.ps1.zip
  dscpack archive WebServer.ps1 -o site.zip      Build a named archive
  dscpack publish WebServer.ps1                  Package and upload
  dscpack publish site.zip --force               Re-upload a built archive`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dscpack/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(publishCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		// Config problems are surfaced but do not prevent --help and such.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	loadedConfig = cfg

	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
	versionCheckErr = config.CheckToolVersion(cfg, Version)
}

// requireConfig hands subcommands the resolved configuration, enforcing
// the min_tool_version gate first.
func requireConfig() (*config.Config, error) {
	if versionCheckErr != nil {
		return nil, versionCheckErr
	}
	if loadedConfig == nil {
		return config.DefaultConfig(), nil
	}
	return loadedConfig, nil
}

// newLogger builds the run logger; --verbose switches it to debug level.
func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// moduleResolver picks the resolver implementation the config asks for.
func moduleResolver(cfg *config.Config) dscmod.Resolver {
	if cfg.Resolver.Kind == "shell" {
		return dscmod.NewShellResolver(cfg.Resolver.ShellCommand)
	}
	return dscmod.NewPathResolver(cfg.ModulePaths)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// reportGuidance prints the rendered remediation card for the error's
// category in verbose mode.
func reportGuidance(err error) {
	if !verbose {
		return
	}
	g := issue.Get(issue.CategoryOf(err))
	if g == nil {
		return
	}
	if card, renderErr := g.Render("dark"); renderErr == nil {
		fmt.Fprintln(os.Stderr, card)
	}
}

// failWith reports err and converts it into the command's exit error.
func failWith(err error) error {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	reportGuidance(err)
	return &ExitError{Code: 1}
}
