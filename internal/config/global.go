// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride lets tests and the --config flag redirect config
// loading away from the platform config directory.
var configDirOverride string

// configFilePathOverride points at an explicit config file (--config flag).
var configFilePathOverride string

// SetConfigDirOverride redirects config loading to dir. Empty restores the
// platform default.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetConfigFilePathOverride makes Load read exactly path. Empty restores
// the search behavior.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}
