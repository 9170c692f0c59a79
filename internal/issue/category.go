// SPDX-License-Identifier: MPL-2.0

package issue

import "errors"

// Category is the machine-readable classification of a terminating error.
type Category string

const (
	// InvalidArgument covers missing input files, disallowed extensions,
	// and missing storage credentials when upload mode requires them.
	InvalidArgument Category = "InvalidArgument"

	// PermissionDenied covers unreadable modules or resources, and
	// destination files or blobs that already exist without overwrite
	// permission.
	PermissionDenied Category = "PermissionDenied"

	// ParserError covers configuration files that fail to parse. The
	// error message aggregates every individual parser error.
	ParserError Category = "ParserError"

	// InvalidOperation covers failures that are neither a caller mistake
	// nor an access problem, such as an unresolvable module.
	InvalidOperation Category = "InvalidOperation"

	// PreconditionFailure is raised when the configuration file demands a
	// newer tool version than the running build.
	PreconditionFailure Category = "PreconditionFailure"
)

// CategoryOf returns the category of err, walking the wrap chain.
// Errors outside the taxonomy report InvalidOperation.
func CategoryOf(err error) Category {
	var ae *ActionableError
	if errors.As(err, &ae) && ae.Category != "" {
		return ae.Category
	}
	return InvalidOperation
}

// HasCategory reports whether err (or anything it wraps) carries cat.
func HasCategory(err error, cat Category) bool {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.Category == cat
	}
	return false
}
