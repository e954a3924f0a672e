// SPDX-License-Identifier: MPL-2.0

// Package installer materializes resolved skill packages into a destination
// directory with all-or-nothing semantics.
//
// A destination holds one Markdown file per installed package at
// <dest>/<namespace>/<name>.md, plus a TOML manifest at the root recording
// installed versions. Content is written to a temporary file and renamed
// into place; the manifest is only updated after the rename, so a failed or
// canceled install leaves the destination in its prior state.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/skillhub/skillhub/pkg/registry"
	"github.com/skillhub/skillhub/pkg/resolver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

// LockFileName is the on-disk lock sentinel guarding a destination against
// concurrent installs from other processes.
const LockFileName = ".skillhub.lock"

var (
	// ErrNotInstalled is the sentinel error wrapped by NotInstalledError.
	ErrNotInstalled = errors.New("package not installed")

	// ErrDestinationLocked is returned when another process holds the
	// destination lock.
	ErrDestinationLocked = errors.New("destination is locked by another process")
)

type (
	// NotInstalledError is returned when an uninstall or upgrade targets a
	// package with no current installation at the destination.
	NotInstalledError struct {
		ID          skillpkg.PackageID
		Destination string
	}

	// Installer applies resolved package versions to destination
	// directories. Installs targeting the same destination are serialized;
	// different destinations proceed independently.
	Installer struct {
		logger *log.Logger

		// mu guards destLocks; each destination gets its own mutex so
		// unrelated destinations don't contend.
		mu        sync.Mutex
		destLocks map[string]*sync.Mutex
	}
)

// Error implements the error interface for NotInstalledError.
func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("package %s is not installed at %s", e.ID, e.Destination)
}

// Unwrap returns ErrNotInstalled for errors.Is() compatibility.
func (e *NotInstalledError) Unwrap() error { return ErrNotInstalled }

// New creates an installer.
func New(logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Installer{
		logger:    logger,
		destLocks: make(map[string]*sync.Mutex),
	}
}

// ContentPath returns where a package's content lives inside a destination.
func ContentPath(destDir string, id skillpkg.PackageID) string {
	return filepath.Join(destDir, id.Namespace, id.Name+".md")
}

// lockDestination serializes work on a destination. It blocks other
// goroutines of this process and fails fast when another process holds the
// on-disk lock. The returned unlock func releases both on every exit path.
func (i *Installer) lockDestination(destDir string) (func(), error) {
	i.mu.Lock()
	dm, ok := i.destLocks[destDir]
	if !ok {
		dm = &sync.Mutex{}
		i.destLocks[destDir] = dm
	}
	i.mu.Unlock()

	dm.Lock()

	lockPath := filepath.Join(destDir, LockFileName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		dm.Unlock()
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDestinationLocked, lockPath)
		}
		return nil, fmt.Errorf("failed to lock destination: %w", err)
	}
	_ = f.Close()

	return func() {
		_ = os.Remove(lockPath)
		dm.Unlock()
	}, nil
}

// Install writes the record's content into destDir and updates the
// manifest. The destination write lock is held for the whole operation.
// Cancellation before the atomic rename leaves the destination unchanged.
func (i *Installer) Install(ctx context.Context, rec *registry.Record, destDir string) (InstalledPackage, error) {
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return InstalledPackage{}, fmt.Errorf("failed to resolve destination: %w", err)
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return InstalledPackage{}, fmt.Errorf("failed to create destination: %w", err)
	}

	unlock, err := i.lockDestination(absDest)
	if err != nil {
		return InstalledPackage{}, err
	}
	defer unlock()

	return i.installLocked(ctx, rec, absDest)
}

func (i *Installer) installLocked(ctx context.Context, rec *registry.Record, destDir string) (InstalledPackage, error) {
	content, err := rec.Content()
	if err != nil {
		return InstalledPackage{}, err
	}

	finalPath := ContentPath(destDir, rec.ID)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return InstalledPackage{}, fmt.Errorf("failed to create namespace dir for %s: %w", rec.ID, err)
	}

	// Stage next to the final path so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(finalPath), "."+rec.ID.Name+"-*.tmp")
	if err != nil {
		return InstalledPackage{}, fmt.Errorf("failed to stage install of %s@%s: %w", rec.ID, rec.Version, err)
	}
	tmpPath := tmp.Name()
	discard := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		discard()
		return InstalledPackage{}, fmt.Errorf("failed to write content of %s@%s: %w", rec.ID, rec.Version, err)
	}
	if err := tmp.Close(); err != nil {
		discard()
		return InstalledPackage{}, fmt.Errorf("failed to flush content of %s@%s: %w", rec.ID, rec.Version, err)
	}

	// Last cancellation point: after this rename the install is complete.
	select {
	case <-ctx.Done():
		discard()
		return InstalledPackage{}, fmt.Errorf("install of %s@%s canceled: %w", rec.ID, rec.Version, ctx.Err())
	default:
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		discard()
		return InstalledPackage{}, fmt.Errorf("failed to install %s@%s: %w", rec.ID, rec.Version, err)
	}

	manifest, err := LoadManifest(destDir)
	if err != nil {
		return InstalledPackage{}, err
	}
	pkg := InstalledPackage{
		Namespace:   rec.ID.Namespace,
		Name:        rec.ID.Name,
		Version:     rec.Version.String(),
		InstalledAt: time.Now().UTC(),
	}
	manifest.Set(pkg)
	if err := manifest.Save(destDir); err != nil {
		return InstalledPackage{}, err
	}

	i.logger.Debug("installed package", "package", rec.ID, "version", rec.Version, "destination", destDir)
	return pkg, nil
}

// Uninstall removes the package's content and manifest entry from destDir.
// It fails with NotInstalledError when id has no entry, and leaves the
// destination untouched on failure.
func (i *Installer) Uninstall(id skillpkg.PackageID, destDir string) error {
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	unlock, err := i.lockDestination(absDest)
	if err != nil {
		return err
	}
	defer unlock()

	manifest, err := LoadManifest(absDest)
	if err != nil {
		return err
	}
	if _, ok := manifest.Get(id); !ok {
		return &NotInstalledError{ID: id, Destination: absDest}
	}

	contentPath := ContentPath(absDest, id)
	if err := os.Remove(contentPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove content of %s: %w", id, err)
	}
	// Drop the namespace dir when it only held this package.
	_ = os.Remove(filepath.Dir(contentPath))

	manifest.Remove(id)
	if err := manifest.Save(absDest); err != nil {
		return err
	}

	i.logger.Debug("uninstalled package", "package", id, "destination", absDest)
	return nil
}

// Upgrade resolves id against constraint and installs the result. When the
// resolved version equals the installed one the upgrade is a no-op success.
// Upgrading a package that is not installed fails with NotInstalledError.
// Returns the manifest entry and whether anything changed.
func (i *Installer) Upgrade(ctx context.Context, res *resolver.Resolver, id skillpkg.PackageID, constraint, destDir string) (InstalledPackage, bool, error) {
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return InstalledPackage{}, false, fmt.Errorf("failed to resolve destination: %w", err)
	}

	manifest, err := LoadManifest(absDest)
	if err != nil {
		return InstalledPackage{}, false, err
	}
	current, ok := manifest.Get(id)
	if !ok {
		return InstalledPackage{}, false, &NotInstalledError{ID: id, Destination: absDest}
	}

	rec, err := res.Resolve(ctx, id, constraint)
	if err != nil {
		return InstalledPackage{}, false, err
	}

	if rec.Version.String() == current.Version {
		i.logger.Debug("upgrade is a no-op", "package", id, "version", current.Version)
		return current, false, nil
	}

	pkg, err := i.Install(ctx, rec, absDest)
	if err != nil {
		return InstalledPackage{}, false, err
	}
	return pkg, true, nil
}
