// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/skillhub/skillhub/pkg/skillpkg"
)

const (
	// ManifestFileName is the manifest kept at the destination root.
	ManifestFileName = "skillhub.manifest.toml"

	// ManifestVersion is the current manifest format version.
	ManifestVersion = 1
)

type (
	// Manifest records the installed state of a destination directory:
	// one entry per (namespace, name).
	Manifest struct {
		Version  int                `toml:"version"`
		Packages []InstalledPackage `toml:"packages"`
	}

	// InstalledPackage is the record of one installed package.
	InstalledPackage struct {
		Namespace   string    `toml:"namespace"`
		Name        string    `toml:"name"`
		Version     string    `toml:"version"`
		InstalledAt time.Time `toml:"installed_at"`
	}
)

// ID returns the package identity of the entry.
func (p InstalledPackage) ID() skillpkg.PackageID {
	return skillpkg.PackageID{Namespace: p.Namespace, Name: p.Name}
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Version: ManifestVersion}
}

// LoadManifest reads the manifest of a destination directory. A missing
// manifest is an empty one, not an error.
func LoadManifest(destDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(destDir, ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Version == 0 {
		m.Version = ManifestVersion
	}
	return &m, nil
}

// Save writes the manifest atomically (temp file + rename) to the
// destination root.
func (m *Manifest) Save(destDir string) error {
	sort.Slice(m.Packages, func(i, j int) bool {
		return m.Packages[i].ID().String() < m.Packages[j].ID().String()
	})

	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(destDir, ManifestFileName)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to rename manifest: %w", err)
	}
	return nil
}

// Get returns the entry for id, if installed.
func (m *Manifest) Get(id skillpkg.PackageID) (InstalledPackage, bool) {
	for _, p := range m.Packages {
		if p.ID() == id {
			return p, true
		}
	}
	return InstalledPackage{}, false
}

// Set inserts or replaces the entry for pkg's identity.
func (m *Manifest) Set(pkg InstalledPackage) {
	for i, p := range m.Packages {
		if p.ID() == pkg.ID() {
			m.Packages[i] = pkg
			return
		}
	}
	m.Packages = append(m.Packages, pkg)
}

// Remove deletes the entry for id, reporting whether it existed.
func (m *Manifest) Remove(id skillpkg.PackageID) bool {
	for i, p := range m.Packages {
		if p.ID() == id {
			m.Packages = append(m.Packages[:i], m.Packages[i+1:]...)
			return true
		}
	}
	return false
}
