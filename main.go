// SPDX-License-Identifier: MPL-2.0

// dscpack packages DSC configuration scripts with their modules and
// publishes the archives to Azure Blob Storage.
package main

import cmd "dscpack-cli/cmd/dscpack"

func main() {
	cmd.Execute()
}
