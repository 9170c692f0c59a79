// SPDX-License-Identifier: MPL-2.0

package config

// Config is the resolved dscpack configuration.
type Config struct {
	// ModulePaths are the roots scanned for installed DSC modules.
	ModulePaths []string `mapstructure:"module_paths"`

	// ContainerName is the blob container archives are published to when
	// the --container flag is not given.
	ContainerName string `mapstructure:"container_name"`

	// MinToolVersion, when set, is the lowest dscpack version allowed to
	// run. Older builds stop with a precondition failure.
	MinToolVersion string `mapstructure:"min_tool_version"`

	// Resolver selects how module directories are located.
	Resolver ResolverConfig `mapstructure:"resolver"`

	// Storage carries blob storage credentials.
	Storage StorageConfig `mapstructure:"storage"`

	// UI holds presentation options.
	UI UIConfig `mapstructure:"ui"`
}

// ResolverConfig selects and parameterizes the module resolver.
type ResolverConfig struct {
	// Kind is "path" (scan ModulePaths) or "shell" (run ShellCommand).
	Kind string `mapstructure:"kind"`

	// ShellCommand is the shell snippet run by the "shell" resolver. It
	// receives DSC_MODULE_NAME and DSC_MODULE_VERSION in its environment
	// and must print the module directory on stdout.
	ShellCommand string `mapstructure:"shell_command"`
}

// StorageConfig carries blob storage credentials.
type StorageConfig struct {
	// ConnectionString is the Azure Storage connection string. The
	// DSCPACK_STORAGE_CONNECTION_STRING environment variable and the
	// --connection-string flag take precedence over this value.
	ConnectionString string `mapstructure:"connection_string"`
}

// UIConfig holds presentation options.
type UIConfig struct {
	// Verbose enables debug-level logging without the --verbose flag.
	Verbose bool `mapstructure:"verbose"`
}

// DefaultContainerName is the well-known container DSC archives are
// published to when neither flag nor config names one.
const DefaultContainerName = "windows-powershell-dsc"

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ModulePaths:   nil, // filled from the platform module dir at load time
		ContainerName: DefaultContainerName,
		Resolver: ResolverConfig{
			Kind: "path",
		},
	}
}
