// SPDX-License-Identifier: MPL-2.0

// Package config loads the dscpack configuration file. The file is CUE,
// validated against an embedded schema and merged into Viper so defaults
// and future env overrides compose cleanly.
package config
