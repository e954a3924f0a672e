// SPDX-License-Identifier: MPL-2.0

package skillpkg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type (
	// ValidationIssue represents a single validation problem in a package
	// directory.
	ValidationIssue struct {
		// Type categorizes the issue (e.g. "structure", "naming", "metadata").
		Type string
		// Message describes the specific problem.
		Message string
		// Path is the relative path within the package where the issue was
		// found (optional).
		Path string
	}

	// ValidationResult contains the outcome of validating a package
	// directory prior to publication.
	ValidationResult struct {
		// Valid is true if the directory passed all checks.
		Valid bool
		// PackagePath is the absolute path to the validated directory.
		PackagePath string
		// Metadata is the parsed skillpack.cue, when it parsed cleanly.
		Metadata *Metadata
		// ContentPath is the absolute path to skill.md.
		ContentPath string
		// Issues contains all problems found.
		Issues []ValidationIssue
	}
)

// Error implements the error interface for ValidationIssue.
func (v ValidationIssue) Error() string {
	if v.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", v.Type, v.Path, v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.Type, v.Message)
}

// AddIssue records a validation issue and marks the result invalid.
func (r *ValidationResult) AddIssue(issueType, message, path string) {
	r.Issues = append(r.Issues, ValidationIssue{Type: issueType, Message: message, Path: path})
	r.Valid = false
}

// Err collapses the issues into a single error, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		msgs = append(msgs, issue.Error())
	}
	return fmt.Errorf("invalid package: %s", strings.Join(msgs, "; "))
}

// ValidateDir checks a package directory for publication: it must contain a
// parseable skillpack.cue, a non-empty skill.md, and no symlinks.
func ValidateDir(dir string) (*ValidationResult, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	result := &ValidationResult{Valid: true, PackagePath: absPath}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.AddIssue("structure", "path does not exist", "")
			return result, nil
		}
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		result.AddIssue("structure", "path is not a directory", "")
		return result, nil
	}

	// skillpack.cue is required.
	metaPath := filepath.Join(absPath, MetadataFileName)
	if _, statErr := os.Stat(metaPath); statErr != nil {
		if os.IsNotExist(statErr) {
			result.AddIssue("structure", "missing required "+MetadataFileName, "")
		} else {
			result.AddIssue("structure", fmt.Sprintf("cannot access %s: %v", MetadataFileName, statErr), "")
		}
	} else {
		meta, parseErr := ParseMetadata(metaPath)
		if parseErr != nil {
			result.AddIssue("metadata", parseErr.Error(), MetadataFileName)
		} else {
			result.Metadata = meta
			if !meta.ID().IsValid() {
				result.AddIssue("naming", fmt.Sprintf("invalid package identity %q", meta.ID()), MetadataFileName)
			}
		}
	}

	// skill.md is required and must be non-empty.
	contentPath := filepath.Join(absPath, ContentFileName)
	contentInfo, err := os.Stat(contentPath)
	switch {
	case err != nil && os.IsNotExist(err):
		result.AddIssue("structure", "missing required "+ContentFileName, "")
	case err != nil:
		result.AddIssue("structure", fmt.Sprintf("cannot access %s: %v", ContentFileName, err), "")
	case contentInfo.IsDir():
		result.AddIssue("structure", ContentFileName+" must be a file, not a directory", "")
	case contentInfo.Size() == 0:
		result.AddIssue("structure", ContentFileName+" is empty", "")
	default:
		result.ContentPath = contentPath
	}

	// Symlinks could point outside the package and end up in the registry.
	walkErr := filepath.WalkDir(absPath, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || path == absPath {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			relPath, _ := filepath.Rel(absPath, path)
			result.AddIssue("security", "symlinks are not allowed in packages", relPath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk package directory: %w", walkErr)
	}

	return result, nil
}
