// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"dscpack-cli/internal/issue"
	"dscpack-cli/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for config and data paths.
	AppName = "dscpack"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the dscpack configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ModulesDir returns the default directory for installed DSC modules.
// The path is ~/.dscpack/modules on all platforms.
func ModulesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName, "modules"), nil
}

// Load reads the dscpack configuration. Precedence: explicit file set via
// SetConfigFilePathOverride, then <config-dir>/config.cue, then ./config.cue,
// then built-in defaults. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("container_name", defaults.ContainerName)
	v.SetDefault("resolver.kind", defaults.Resolver.Kind)
	v.SetDefault("ui.verbose", false)

	if configFilePathOverride != "" {
		if !fileExists(configFilePathOverride) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(configFilePathOverride).
				WithCategory(issue.InvalidArgument).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", configFilePathOverride)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, configFilePathOverride); err != nil {
			return nil, wrapConfigParseError(err, configFilePathOverride)
		}
	} else {
		cfgDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}

		cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		switch {
		case fileExists(cuePath):
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, wrapConfigParseError(err, cuePath)
			}
		case fileExists(ConfigFileName + "." + ConfigFileExt):
			localPath := ConfigFileName + "." + ConfigFileExt
			if err := loadCUEIntoViper(v, localPath); err != nil {
				return nil, wrapConfigParseError(err, localPath)
			}
		}
		// No config file found: defaults apply, no error.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.ModulePaths) == 0 {
		modDir, err := ModulesDir()
		if err != nil {
			return nil, err
		}
		cfg.ModulePaths = []string{modDir}
	}

	if cfg.Resolver.Kind == "shell" && cfg.Resolver.ShellCommand == "" {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithCategory(issue.InvalidArgument).
			WithSuggestion("Set resolver.shell_command when resolver.kind is \"shell\"").
			Wrap(fmt.Errorf("resolver.kind is \"shell\" but resolver.shell_command is empty")).
			BuildError()
	}

	return &cfg, nil
}

func wrapConfigParseError(err error, path string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithCategory(issue.InvalidArgument).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		Wrap(err).
		BuildError()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper. The decode target is a
// map[string]any rather than a struct so Viper keeps its default/override
// layering.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	// Unify with schema to validate against the #Config definition.
	// Concrete(false) because every config field is optional.
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
