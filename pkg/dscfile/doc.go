// SPDX-License-Identifier: MPL-2.0

// Package dscfile extracts module requirements from Desired State
// Configuration scripts. It scans for the two directive forms that declare
// dependencies — `#Requires -Modules ...` and `Import-DscResource ...` —
// and reports every malformed directive it finds in one aggregated error
// rather than stopping at the first.
package dscfile
