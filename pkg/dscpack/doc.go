// SPDX-License-Identifier: MPL-2.0

// Package dscpack packages a DSC configuration script together with the
// modules it imports into a ZIP archive. The pipeline is strictly
// sequential: validate the request, parse the script for module
// requirements, stage the script and resolved module trees in a temp
// directory, then write the archive. Publishing hands the finished
// archive to a Publisher; temp resources are registered with a cleanup
// tracker and removed when the run ends, pass or fail.
package dscpack
