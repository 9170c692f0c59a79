// SPDX-License-Identifier: MPL-2.0

// Package issue defines the error taxonomy for dscpack and the structured
// error type carried by every terminating failure. Each error belongs to a
// machine-readable category and may carry operation/resource context plus
// user-facing suggestions.
package issue
