// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/skillhub/skillhub/pkg/semver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return store
}

func testMeta(namespace, name, version string) *skillpkg.Metadata {
	return &skillpkg.Metadata{
		Namespace: namespace,
		Name:      name,
		Version:   version,
		Kind:      skillpkg.KindSkill,
	}
}

func mustPublish(t *testing.T, store *Store, namespace, name, version string) *Record {
	t.Helper()
	rec, err := store.Publish(testMeta(namespace, name, version), []byte("# "+name+" "+version+"\n"))
	if err != nil {
		t.Fatalf("Publish(%s/%s@%s) returned error: %v", namespace, name, version, err)
	}
	return rec
}

func TestPublishAndGet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	mustPublish(t, store, "acme", "review", "1.0.0")
	mustPublish(t, store, "acme", "review", "1.2.0")

	c, err := semver.ParseConstraint("")
	if err != nil {
		t.Fatal(err)
	}
	records, err := store.Get(skillpkg.PackageID{Namespace: "acme", Name: "review"}, c)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Get returned %d records, want 2", len(records))
	}
	if got := records[1].Version.String(); got != "1.2.0" {
		t.Errorf("last record = %s, want 1.2.0 (ascending order)", got)
	}

	content, err := records[0].Content()
	if err != nil {
		t.Fatalf("Content returned error: %v", err)
	}
	if string(content) != "# review 1.0.0\n" {
		t.Errorf("content = %q", content)
	}
}

func TestPublishDuplicateVersion(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	mustPublish(t, store, "acme", "review", "1.0.0")

	_, err := store.Publish(testMeta("acme", "review", "1.0.0"), []byte("# changed\n"))
	if err == nil {
		t.Fatal("republishing an existing version succeeded")
	}
	if !errors.Is(err, ErrDuplicateVersion) {
		t.Errorf("error does not wrap ErrDuplicateVersion: %v", err)
	}
	var dupErr *DuplicateVersionError
	if !errors.As(err, &dupErr) {
		t.Fatalf("error is not *DuplicateVersionError: %T", err)
	}
	if dupErr.Version.String() != "1.0.0" {
		t.Errorf("Version = %s, want 1.0.0", dupErr.Version)
	}

	// The original content must be untouched.
	rec := mustGetSingle(t, store, "acme/review", "=1.0.0")
	content, err := rec.Content()
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# review 1.0.0\n" {
		t.Errorf("content was overwritten: %q", content)
	}
}

func mustGetSingle(t *testing.T, store *Store, idStr, constraint string) *Record {
	t.Helper()
	id, err := skillpkg.ParseID(idStr)
	if err != nil {
		t.Fatal(err)
	}
	c, err := semver.ParseConstraint(constraint)
	if err != nil {
		t.Fatal(err)
	}
	records, err := store.Get(id, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Get(%s, %s) returned %d records, want 1", idStr, constraint, len(records))
	}
	return records[0]
}

func TestGetUnknownPackage(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	c, err := semver.ParseConstraint("*")
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Get(skillpkg.PackageID{Namespace: "nobody", Name: "nothing"}, c)
	if !errors.Is(err, ErrUnknownPackage) {
		t.Errorf("error does not wrap ErrUnknownPackage: %v", err)
	}
	var unknownErr *UnknownPackageError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error is not *UnknownPackageError: %T", err)
	}
}

func TestGetConstraintFilters(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	for _, v := range []string{"0.9.0", "1.0.0", "1.2.0", "2.0.0"} {
		mustPublish(t, store, "acme", "review", v)
	}

	c, err := semver.ParseConstraint("^1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	records, err := store.Get(skillpkg.PackageID{Namespace: "acme", Name: "review"}, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("Get(^1.0.0) returned %d records, want 2", len(records))
	}
	if records[0].Version.String() != "1.0.0" || records[1].Version.String() != "1.2.0" {
		t.Errorf("got %s, %s", records[0].Version, records[1].Version)
	}
}

func TestListVersionsOrderAndRestart(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	// Published out of order; listing must still be ascending.
	for _, v := range []string{"1.2.0", "1.0.0", "2.0.0-rc.1", "1.10.0"} {
		mustPublish(t, store, "acme", "review", v)
	}

	id := skillpkg.PackageID{Namespace: "acme", Name: "review"}
	seq, err := store.ListVersions(id)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"1.0.0", "1.2.0", "1.10.0", "2.0.0-rc.1"}
	collect := func() []string {
		var got []string
		for rec := range seq {
			got = append(got, rec.Version.String())
		}
		return got
	}

	for run := 0; run < 2; run++ {
		got := collect()
		if len(got) != len(want) {
			t.Fatalf("run %d: got %v, want %v", run, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: got %v, want %v", run, got, want)
			}
		}
	}

	// Early break must not poison the sequence.
	for range seq {
		break
	}
	if got := collect(); len(got) != len(want) {
		t.Errorf("after early break: got %v", got)
	}
}

func TestListVersionsUnknownPackage(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.ListVersions(skillpkg.PackageID{Namespace: "acme", Name: "review"}); !errors.Is(err, ErrUnknownPackage) {
		t.Errorf("error does not wrap ErrUnknownPackage: %v", err)
	}
}

func TestOpenReloadsPublishedPackages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	mustPublish(t, store, "acme", "review", "1.0.0")
	mustPublish(t, store, "tools", "lint", "0.1.0")

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	ids := reopened.Packages()
	if len(ids) != 2 {
		t.Fatalf("Packages() = %v, want 2 entries", ids)
	}
	if ids[0].String() != "acme/review" || ids[1].String() != "tools/lint" {
		t.Errorf("Packages() = %v", ids)
	}

	versions, err := reopened.Versions(skillpkg.PackageID{Namespace: "acme", Name: "review"})
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 1 || versions[0].String() != "1.0.0" {
		t.Errorf("Versions() = %v", versions)
	}
}

func TestOpenSkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	mustPublish(t, store, "acme", "review", "1.0.0")

	// A version directory that is not a valid semver must be skipped, not
	// abort the whole index load.
	junk := filepath.Join(dir, "acme", "review", "not-a-version")
	if err := os.MkdirAll(junk, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(junk, skillpkg.ContentFileName), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	versions, err := reopened.Versions(skillpkg.PackageID{Namespace: "acme", Name: "review"})
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 1 {
		t.Errorf("Versions() = %v, want only 1.0.0", versions)
	}
}

func TestConcurrentPublishDistinctVersions(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			version := fmt.Sprintf("1.%d.0", n)
			if _, err := store.Publish(testMeta("acme", "review", version), []byte("# v"+version+"\n")); err != nil {
				t.Errorf("Publish(%s) returned error: %v", version, err)
			}
		}(i)
	}
	wg.Wait()

	versions, err := store.Versions(skillpkg.PackageID{Namespace: "acme", Name: "review"})
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 8 {
		t.Fatalf("Versions() = %v, want 8 entries", versions)
	}
	for i := 1; i < len(versions); i++ {
		if versions[i-1].Compare(versions[i]) >= 0 {
			t.Errorf("versions not strictly ascending: %v", versions)
		}
	}
}
