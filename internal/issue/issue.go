// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
)

// Guidance is a remediation card for one error category. The markdown body
// is rendered with glamour when the CLI prints a terminating error in
// verbose mode.
type Guidance struct {
	category Category
	mdMsg    string
}

// Category returns the category this guidance belongs to.
func (g *Guidance) Category() Category {
	return g.category
}

// MarkdownMsg returns the raw markdown body.
func (g *Guidance) MarkdownMsg() string {
	return g.mdMsg
}

// Render renders the guidance with the given glamour style path.
func (g *Guidance) Render(stylePath string) (string, error) {
	return render(g.mdMsg, stylePath)
}

// render is a seam for tests to stub out glamour.
var render = glamour.Render

var catalog = map[Category]*Guidance{
	InvalidArgument: {
		category: InvalidArgument,
		mdMsg: `
# Invalid argument

The command was invoked with an input dscpack cannot work with.

## Things to check
- The configuration file exists and its path is spelled correctly
- Archive mode accepts ` + "`.ps1`" + ` and ` + "`.psm1`" + ` files
- Publish mode accepts ` + "`.ps1`" + `, ` + "`.psm1`" + ` and ` + "`.zip`" + ` files
- Publish mode needs storage credentials:
~~~
$ export DSCPACK_STORAGE_CONNECTION_STRING="..."
~~~
  or set ` + "`storage.connection_string`" + ` in the config file`,
	},

	PermissionDenied: {
		category: PermissionDenied,
		mdMsg: `
# Permission denied

Either a required module could not be read, or the destination already holds
an artifact dscpack is not allowed to replace.

## Things to try
- Pass ` + "`--force`" + ` to overwrite an existing archive or blob
- Check read permission on the module directories listed in ` + "`module_paths`",
	},

	ParserError: {
		category: ParserError,
		mdMsg: `
# Configuration parse error

The configuration script contains directives dscpack could not understand.
Every collected parse error is listed in the message above.

## Common issues
- ` + "`Import-DscResource`" + ` without a ` + "`-ModuleName`" + ` argument
- A ` + "`-ModuleVersion`" + ` that is not a dotted version number
- The same module required twice with conflicting versions`,
	},

	InvalidOperation: {
		category: InvalidOperation,
		mdMsg: `
# Operation failed

A required module could not be resolved, or an external service refused the
request.

## Things to try
- Verify the module is installed under one of the ` + "`module_paths`" + ` roots
- Run with ` + "`--verbose`" + ` to see each resolution attempt`,
	},

	PreconditionFailure: {
		category: PreconditionFailure,
		mdMsg: `
# Tool version too old

The configuration declares a ` + "`min_tool_version`" + ` newer than this build
of dscpack.

## Things to try
- Upgrade dscpack
- Lower or remove ` + "`min_tool_version`" + ` in the config file`,
	},
}

// Get returns the remediation guidance for a category, or nil when the
// category has no card.
func Get(cat Category) *Guidance {
	return catalog[cat]
}
