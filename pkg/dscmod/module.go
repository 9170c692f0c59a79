// SPDX-License-Identifier: MPL-2.0

package dscmod

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFileName is the manifest carried by every installed module
// directory.
const ManifestFileName = "dscmod.toml"

// Manifest is the metadata of an installed module.
type Manifest struct {
	// Name is the module name; it must match the directory the module
	// lives in.
	Name string `toml:"name"`

	// Version is the installed module version (dotted, semver-compatible).
	Version string `toml:"version"`

	// Description is optional free text.
	Description string `toml:"description,omitempty"`
}

// Module is an installed module: its manifest plus the directory it was
// resolved from.
type Module struct {
	Manifest *Manifest
	Path     string
}

// LoadManifest reads and validates the manifest inside dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("%s: manifest has no name", path)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("%s: manifest has no version", path)
	}

	return &m, nil
}

// IsModuleDir reports whether dir holds a module manifest.
func IsModuleDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ManifestFileName))
	return err == nil && !info.IsDir()
}
