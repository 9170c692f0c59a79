// SPDX-License-Identifier: MPL-2.0

// Package publish uploads finished configuration archives to Azure
// Blob Storage. The storage client is built lazily on first use so
// that validation failures surface before any credentials are touched,
// and SDK failures are translated into the CLI's error categories.
package publish
