// SPDX-License-Identifier: MPL-2.0

// Package dscmod locates installed DSC modules on the local machine. The
// Resolver interface keeps the lookup mechanism narrow and swappable: the
// default implementation scans configured module roots for manifests, and
// an alternative delegates the lookup to a user-supplied shell command.
package dscmod
