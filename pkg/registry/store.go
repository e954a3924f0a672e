// SPDX-License-Identifier: MPL-2.0

// Package registry implements the skill package store: write-once,
// filesystem-backed storage of package versions keyed by
// (namespace, name, version), with an in-memory index for lookups.
//
// On disk a registry root looks like:
//
//	<root>/<namespace>/<name>/<version>/skill.md
//	<root>/<namespace>/<name>/<version>/skillpack.cue
//
// The store is append-only: published versions are immutable and are never
// overwritten or removed. Reads are safe for concurrent use; publishes are
// serialized so the write-once invariant holds under concurrency.
package registry

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/skillhub/skillhub/pkg/semver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

type (
	// Record is a single published package version. Content is loaded on
	// demand from the registry root; metadata is indexed in memory.
	Record struct {
		ID       skillpkg.PackageID
		Version  semver.Version
		Metadata map[string]string

		contentPath string
	}

	// Store is a filesystem-backed package registry.
	Store struct {
		root   string
		logger *log.Logger

		// mu guards index. Publishes take the write lock, which also
		// serializes writers per package ID.
		mu    sync.RWMutex
		index map[skillpkg.PackageID][]*Record
	}
)

// Content returns the package's Markdown blob. The bytes are opaque payload;
// the registry never inspects their structure.
func (r *Record) Content() ([]byte, error) {
	data, err := os.ReadFile(r.contentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read content for %s@%s: %w", r.ID, r.Version, err)
	}
	return data, nil
}

// Open opens (creating if necessary) a registry rooted at dir and loads its
// index. Directories that don't parse as namespace/name/version entries are
// skipped with a warning.
func Open(dir string, logger *log.Logger) (*Store, error) {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve registry root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry root: %w", err)
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	s := &Store{
		root:   absRoot,
		logger: logger,
		index:  make(map[skillpkg.PackageID][]*Record),
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the absolute registry root directory.
func (s *Store) Root() string { return s.root }

// loadIndex scans the registry root and builds the in-memory index.
func (s *Store) loadIndex() error {
	namespaces, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("failed to read registry root: %w", err)
	}

	for _, nsEntry := range namespaces {
		if !nsEntry.IsDir() {
			continue
		}
		nsPath := filepath.Join(s.root, nsEntry.Name())
		names, err := os.ReadDir(nsPath)
		if err != nil {
			return fmt.Errorf("failed to read namespace dir %s: %w", nsPath, err)
		}

		for _, nameEntry := range names {
			if !nameEntry.IsDir() {
				continue
			}
			id := skillpkg.PackageID{Namespace: nsEntry.Name(), Name: nameEntry.Name()}
			if !id.IsValid() {
				s.logger.Warn("skipping registry entry with invalid identity", "path", filepath.Join(nsPath, nameEntry.Name()))
				continue
			}
			if err := s.loadVersions(id, filepath.Join(nsPath, nameEntry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) loadVersions(id skillpkg.PackageID, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read package dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		version, err := semver.Parse(entry.Name())
		if err != nil {
			s.logger.Warn("skipping registry entry with invalid version", "package", id, "dir", entry.Name())
			continue
		}

		versionDir := filepath.Join(dir, entry.Name())
		meta, err := skillpkg.ParseMetadata(filepath.Join(versionDir, skillpkg.MetadataFileName))
		if err != nil {
			return fmt.Errorf("corrupt registry entry %s@%s: %w", id, version, err)
		}

		s.index[id] = append(s.index[id], &Record{
			ID:          id,
			Version:     version,
			Metadata:    meta.Map(),
			contentPath: filepath.Join(versionDir, skillpkg.ContentFileName),
		})
	}

	sortRecords(s.index[id])
	return nil
}

func sortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Version.Compare(records[j].Version) < 0
	})
}

// Publish inserts a new package version. It fails with DuplicateVersionError
// when the (id, version) pair already exists: publication is write-once.
// The content and metadata are staged in a temporary directory and renamed
// into place, so a failed publish leaves no partial entry behind.
func (s *Store) Publish(meta *skillpkg.Metadata, content []byte) (*Record, error) {
	id := meta.ID()
	if !id.IsValid() {
		return nil, fmt.Errorf("cannot publish %q: invalid package identity", id)
	}
	version, err := semver.Parse(meta.Version)
	if err != nil {
		return nil, fmt.Errorf("cannot publish %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.index[id] {
		if rec.Version.Compare(version) == 0 {
			return nil, &DuplicateVersionError{ID: id, Version: version}
		}
	}

	versionDir := filepath.Join(s.root, id.Namespace, id.Name, version.String())
	stagingDir := versionDir + ".publishing"
	if err := os.MkdirAll(filepath.Dir(versionDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create package dir for %s: %w", id, err)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to stage publication of %s@%s: %w", id, version, err)
	}
	cleanup := func() { _ = os.RemoveAll(stagingDir) }

	if err := os.WriteFile(filepath.Join(stagingDir, skillpkg.ContentFileName), content, 0o644); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to write content for %s@%s: %w", id, version, err)
	}
	if err := os.WriteFile(filepath.Join(stagingDir, skillpkg.MetadataFileName), skillpkg.EncodeMetadata(meta), 0o644); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to write metadata for %s@%s: %w", id, version, err)
	}
	if err := os.Rename(stagingDir, versionDir); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to finalize publication of %s@%s: %w", id, version, err)
	}

	rec := &Record{
		ID:          id,
		Version:     version,
		Metadata:    meta.Map(),
		contentPath: filepath.Join(versionDir, skillpkg.ContentFileName),
	}
	s.index[id] = append(s.index[id], rec)
	sortRecords(s.index[id])

	s.logger.Debug("published package", "package", id, "version", version)
	return rec, nil
}

// Get returns the versions of id that satisfy the constraint, ascending.
// An empty result is not an error; an id that has never been published is
// reported as UnknownPackageError.
func (s *Store) Get(id skillpkg.PackageID, c *semver.Constraint) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.index[id]
	if !ok {
		return nil, &UnknownPackageError{ID: id}
	}

	var out []*Record
	for _, rec := range records {
		if c.Matches(rec.Version) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListVersions returns a lazy, restartable sequence over all published
// versions of id, ordered ascending by semantic version precedence.
func (s *Store) ListVersions(id skillpkg.PackageID) (iter.Seq[*Record], error) {
	s.mu.RLock()
	records, ok := s.index[id]
	s.mu.RUnlock()

	if !ok {
		return nil, &UnknownPackageError{ID: id}
	}

	// Snapshot so iteration is stable against concurrent publishes and can
	// be restarted by ranging again.
	snapshot := make([]*Record, len(records))
	copy(snapshot, records)

	return func(yield func(*Record) bool) {
		for _, rec := range snapshot {
			if !yield(rec) {
				return
			}
		}
	}, nil
}

// Versions returns all published versions of id, ascending.
func (s *Store) Versions(id skillpkg.PackageID) ([]semver.Version, error) {
	seq, err := s.ListVersions(id)
	if err != nil {
		return nil, err
	}
	var out []semver.Version
	for rec := range seq {
		out = append(out, rec.Version)
	}
	return out, nil
}

// Packages returns every package ID in the registry, sorted by
// namespace/name.
func (s *Store) Packages() []skillpkg.PackageID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]skillpkg.PackageID, 0, len(s.index))
	for id := range s.index {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
