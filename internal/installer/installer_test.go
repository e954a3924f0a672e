// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillhub/skillhub/pkg/registry"
	"github.com/skillhub/skillhub/pkg/resolver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

func newStoreWithVersions(t *testing.T, versions ...string) (*registry.Store, skillpkg.PackageID) {
	t.Helper()
	store, err := registry.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	id := skillpkg.PackageID{Namespace: "acme", Name: "review"}
	for _, v := range versions {
		meta := &skillpkg.Metadata{
			Namespace: id.Namespace,
			Name:      id.Name,
			Version:   v,
			Kind:      skillpkg.KindSkill,
		}
		if _, err := store.Publish(meta, []byte("# review "+v+"\n")); err != nil {
			t.Fatalf("Publish(%s) returned error: %v", v, err)
		}
	}
	return store, id
}

func resolveVersion(t *testing.T, store *registry.Store, id skillpkg.PackageID, constraint string) *registry.Record {
	t.Helper()
	rec, err := resolver.New(store).Resolve(context.Background(), id, constraint)
	if err != nil {
		t.Fatalf("Resolve(%q) returned error: %v", constraint, err)
	}
	return rec
}

func TestInstallAndUninstall(t *testing.T) {
	t.Parallel()

	store, id := newStoreWithVersions(t, "1.0.0")
	dest := t.TempDir()
	inst := New(nil)

	rec := resolveVersion(t, store, id, "")
	pkg, err := inst.Install(context.Background(), rec, dest)
	if err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if pkg.Version != "1.0.0" {
		t.Errorf("installed version = %s, want 1.0.0", pkg.Version)
	}

	contentPath := ContentPath(dest, id)
	data, err := os.ReadFile(contentPath)
	if err != nil {
		t.Fatalf("content file missing: %v", err)
	}
	if string(data) != "# review 1.0.0\n" {
		t.Errorf("content = %q", data)
	}

	manifest, err := LoadManifest(dest)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := manifest.Get(id)
	if !ok {
		t.Fatal("manifest has no entry for installed package")
	}
	if entry.Version != "1.0.0" || entry.InstalledAt.IsZero() {
		t.Errorf("manifest entry = %+v", entry)
	}

	// Lock file must not linger after the install.
	if _, err := os.Stat(filepath.Join(dest, LockFileName)); !os.IsNotExist(err) {
		t.Error("lock file left behind after install")
	}

	if err := inst.Uninstall(id, dest); err != nil {
		t.Fatalf("Uninstall returned error: %v", err)
	}
	if _, err := os.Stat(contentPath); !os.IsNotExist(err) {
		t.Error("content file still present after uninstall")
	}
	manifest, err = LoadManifest(dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := manifest.Get(id); ok {
		t.Error("manifest still lists the package after uninstall")
	}
}

func TestInstallReplacesExistingVersion(t *testing.T) {
	t.Parallel()

	store, id := newStoreWithVersions(t, "1.0.0", "1.2.0")
	dest := t.TempDir()
	inst := New(nil)

	if _, err := inst.Install(context.Background(), resolveVersion(t, store, id, "1.0.0"), dest); err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Install(context.Background(), resolveVersion(t, store, id, "1.2.0"), dest); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(ContentPath(dest, id))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# review 1.2.0\n" {
		t.Errorf("content = %q, want 1.2.0 content", data)
	}

	manifest, err := LoadManifest(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(manifest.Packages) != 1 {
		t.Fatalf("manifest has %d entries, want 1", len(manifest.Packages))
	}
	if manifest.Packages[0].Version != "1.2.0" {
		t.Errorf("manifest version = %s, want 1.2.0", manifest.Packages[0].Version)
	}
}

func TestInstallCanceledLeavesDestinationUnchanged(t *testing.T) {
	t.Parallel()

	store, id := newStoreWithVersions(t, "1.0.0")
	dest := t.TempDir()
	inst := New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inst.Install(ctx, resolveVersion(t, store, id, ""), dest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error does not wrap context.Canceled: %v", err)
	}

	if _, err := os.Stat(ContentPath(dest, id)); !os.IsNotExist(err) {
		t.Error("canceled install left content behind")
	}
	manifest, err := LoadManifest(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(manifest.Packages) != 0 {
		t.Errorf("canceled install recorded a manifest entry: %+v", manifest.Packages)
	}
}

func TestUninstallNotInstalled(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	id := skillpkg.PackageID{Namespace: "acme", Name: "review"}

	err := New(nil).Uninstall(id, dest)
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("error does not wrap ErrNotInstalled: %v", err)
	}
	var niErr *NotInstalledError
	if !errors.As(err, &niErr) {
		t.Fatalf("error is not *NotInstalledError: %T", err)
	}
	if niErr.ID != id {
		t.Errorf("ID = %v, want %v", niErr.ID, id)
	}
}

func TestDestinationLockedByOtherProcess(t *testing.T) {
	t.Parallel()

	store, id := newStoreWithVersions(t, "1.0.0")
	dest := t.TempDir()

	// Simulate a foreign process holding the lock.
	if err := os.WriteFile(filepath.Join(dest, LockFileName), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(nil).Install(context.Background(), resolveVersion(t, store, id, ""), dest)
	if !errors.Is(err, ErrDestinationLocked) {
		t.Fatalf("error does not wrap ErrDestinationLocked: %v", err)
	}
}

func TestConcurrentInstallsSameDestination(t *testing.T) {
	t.Parallel()

	store, id := newStoreWithVersions(t, "1.0.0", "1.1.0", "1.2.0")
	dest := t.TempDir()
	inst := New(nil)

	constraints := []string{"1.0.0", "1.1.0", "1.2.0"}
	errCh := make(chan error, len(constraints))
	for _, c := range constraints {
		go func(constraint string) {
			_, err := inst.Install(context.Background(), resolveVersion(t, store, id, constraint), dest)
			errCh <- err
		}(c)
	}
	for range constraints {
		if err := <-errCh; err != nil {
			t.Fatalf("concurrent install returned error: %v", err)
		}
	}

	// Whichever install finished last, the destination must be coherent:
	// content and manifest describe the same version.
	manifest, err := LoadManifest(dest)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := manifest.Get(id)
	if !ok {
		t.Fatal("manifest has no entry after concurrent installs")
	}
	data, err := os.ReadFile(ContentPath(dest, id))
	if err != nil {
		t.Fatal(err)
	}
	if want := "# review " + entry.Version + "\n"; string(data) != want {
		t.Errorf("content %q does not match manifest version %s", data, entry.Version)
	}
}

func TestUpgrade(t *testing.T) {
	t.Parallel()

	store, id := newStoreWithVersions(t, "1.0.0")
	dest := t.TempDir()
	inst := New(nil)
	res := resolver.New(store)

	if _, err := inst.Install(context.Background(), resolveVersion(t, store, id, ""), dest); err != nil {
		t.Fatal(err)
	}

	// Nothing newer published: no-op success.
	pkg, changed, err := inst.Upgrade(context.Background(), res, id, "", dest)
	if err != nil {
		t.Fatalf("Upgrade returned error: %v", err)
	}
	if changed {
		t.Error("Upgrade reported a change with no newer version")
	}
	if pkg.Version != "1.0.0" {
		t.Errorf("Upgrade version = %s, want 1.0.0", pkg.Version)
	}

	// Publish a newer version; upgrade must switch to it.
	meta := &skillpkg.Metadata{Namespace: id.Namespace, Name: id.Name, Version: "1.2.0", Kind: skillpkg.KindSkill}
	if _, err := store.Publish(meta, []byte("# review 1.2.0\n")); err != nil {
		t.Fatal(err)
	}

	pkg, changed, err = inst.Upgrade(context.Background(), res, id, "", dest)
	if err != nil {
		t.Fatalf("Upgrade returned error: %v", err)
	}
	if !changed {
		t.Error("Upgrade did not report a change")
	}
	if pkg.Version != "1.2.0" {
		t.Errorf("Upgrade version = %s, want 1.2.0", pkg.Version)
	}
	data, err := os.ReadFile(ContentPath(dest, id))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# review 1.2.0\n" {
		t.Errorf("content = %q", data)
	}
}

func TestUpgradeNotInstalled(t *testing.T) {
	t.Parallel()

	store, id := newStoreWithVersions(t, "1.0.0")
	dest := t.TempDir()

	_, _, err := New(nil).Upgrade(context.Background(), resolver.New(store), id, "", dest)
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("error does not wrap ErrNotInstalled: %v", err)
	}
}

func TestManifestSortedOnSave(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	m := NewManifest()
	m.Set(InstalledPackage{Namespace: "zeta", Name: "z", Version: "1.0.0"})
	m.Set(InstalledPackage{Namespace: "acme", Name: "a", Version: "1.0.0"})
	if err := m.Save(dest); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadManifest(dest)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Version != ManifestVersion {
		t.Errorf("manifest version = %d, want %d", loaded.Version, ManifestVersion)
	}
	if len(loaded.Packages) != 2 || loaded.Packages[0].Namespace != "acme" {
		t.Errorf("packages not sorted: %+v", loaded.Packages)
	}
}
