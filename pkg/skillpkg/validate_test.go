// SPDX-License-Identifier: MPL-2.0

package skillpkg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writePackageDir(t *testing.T, metadata, content string) string {
	t.Helper()
	dir := t.TempDir()
	if metadata != "" {
		if err := os.WriteFile(filepath.Join(dir, MetadataFileName), []byte(metadata), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if content != "" {
		if err := os.WriteFile(filepath.Join(dir, ContentFileName), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const validMetadata = `
namespace: "acme"
name:      "review"
version:   "1.0.0"
`

func TestValidateDirValid(t *testing.T) {
	t.Parallel()

	dir := writePackageDir(t, validMetadata, "# Review skill\n\nAlways be kind.\n")

	result, err := ValidateDir(dir)
	if err != nil {
		t.Fatalf("ValidateDir returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid package, got issues: %v", result.Issues)
	}
	if result.Metadata == nil || result.Metadata.ID().String() != "acme/review" {
		t.Errorf("Metadata = %+v", result.Metadata)
	}
	if result.ContentPath == "" {
		t.Error("ContentPath is empty")
	}
	if result.Err() != nil {
		t.Errorf("Err() = %v, want nil", result.Err())
	}
}

func TestValidateDirIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		metadata string
		content  string
	}{
		{name: "missing metadata", metadata: "", content: "# Hi\n"},
		{name: "missing content", metadata: validMetadata, content: ""},
		{name: "unparseable metadata", metadata: `namespace: "acme`, content: "# Hi\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writePackageDir(t, tt.metadata, tt.content)
			result, err := ValidateDir(dir)
			if err != nil {
				t.Fatalf("ValidateDir returned error: %v", err)
			}
			if result.Valid {
				t.Error("expected validation issues, got valid result")
			}
			if result.Err() == nil {
				t.Error("Err() = nil for invalid result")
			}
		})
	}
}

func TestValidateDirRejectsSymlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := writePackageDir(t, validMetadata, "# Hi\n")
	if err := os.Symlink(filepath.Join(dir, ContentFileName), filepath.Join(dir, "link.md")); err != nil {
		t.Fatal(err)
	}

	result, err := ValidateDir(dir)
	if err != nil {
		t.Fatalf("ValidateDir returned error: %v", err)
	}
	if result.Valid {
		t.Error("expected symlink to be rejected")
	}
}

func TestValidateDirEmptyContent(t *testing.T) {
	t.Parallel()

	dir := writePackageDir(t, validMetadata, "# Hi\n")
	if err := os.WriteFile(filepath.Join(dir, ContentFileName), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := ValidateDir(dir)
	if err != nil {
		t.Fatalf("ValidateDir returned error: %v", err)
	}
	if result.Valid {
		t.Error("expected empty skill.md to be rejected")
	}
}

func TestValidateDirMissing(t *testing.T) {
	t.Parallel()

	result, err := ValidateDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ValidateDir returned error: %v", err)
	}
	if result.Valid {
		t.Error("expected missing directory to be invalid")
	}
}
