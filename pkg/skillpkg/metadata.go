// SPDX-License-Identifier: MPL-2.0

package skillpkg

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed skillpack_schema.cue
var skillpackSchema string

const (
	// KindSkill marks a package whose content is a prompt-template skill.
	KindSkill = "skill"
	// KindRule marks a package whose content is a style-guide rule.
	KindRule = "rule"
)

// Metadata is the parsed content of a skillpack.cue file. It identifies a
// single publication of a package; the content blob lives next to it in
// skill.md and is never interpreted here.
type Metadata struct {
	// Namespace is the publisher scope (e.g. "acme").
	Namespace string `json:"namespace"`
	// Name is the package name within the namespace.
	Name string `json:"name"`
	// Version is the semantic version of this publication.
	Version string `json:"version"`
	// Kind is "skill" or "rule". Defaults to "skill" in the schema.
	Kind string `json:"kind"`
	// Description is an optional one-line summary.
	Description string `json:"description,omitempty"`
	// License is an optional SPDX identifier.
	License string `json:"license,omitempty"`

	// FilePath records where the metadata was loaded from (not in CUE).
	FilePath string `json:"-"`
}

// ID returns the package identity declared by the metadata.
func (m *Metadata) ID() PackageID {
	return PackageID{Namespace: m.Namespace, Name: m.Name}
}

// Map flattens the descriptive fields for storage in a registry record.
// Identity fields (namespace, name, version) are carried by the record key.
func (m *Metadata) Map() map[string]string {
	out := map[string]string{"kind": m.Kind}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.License != "" {
		out["license"] = m.License
	}
	return out
}

// MetadataFromMap is the inverse of Map, used when loading registry records.
func MetadataFromMap(id PackageID, version string, fields map[string]string) *Metadata {
	m := &Metadata{
		Namespace: id.Namespace,
		Name:      id.Name,
		Version:   version,
		Kind:      fields["kind"],
	}
	if m.Kind == "" {
		m.Kind = KindSkill
	}
	m.Description = fields["description"]
	m.License = fields["license"]
	return m
}

// ParseMetadata reads and parses a skillpack.cue file at the given path.
func ParseMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skillpack at %s: %w", path, err)
	}
	return ParseMetadataBytes(data, path)
}

// ParseMetadataBytes parses skillpack.cue content, validating it against the
// embedded schema before decoding.
func ParseMetadataBytes(data []byte, path string) (*Metadata, error) {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(skillpackSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile skillpack schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return nil, fmt.Errorf("failed to parse skillpack at %s: %w", path, userValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Skillpack"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("skillpack validation failed at %s: %w", path, err)
	}

	var meta Metadata
	if err := unified.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode skillpack at %s: %w", path, err)
	}
	meta.FilePath = path

	return &meta, nil
}

// EncodeMetadata renders metadata as skillpack.cue content. Used when the
// registry materializes records and when syncing from a remote index.
func EncodeMetadata(m *Metadata) []byte {
	var b []byte
	appendField := func(key, value string) {
		b = append(b, fmt.Sprintf("%s: %q\n", key, value)...)
	}
	appendField("namespace", m.Namespace)
	appendField("name", m.Name)
	appendField("version", m.Version)
	kind := m.Kind
	if kind == "" {
		kind = KindSkill
	}
	appendField("kind", kind)
	if m.Description != "" {
		appendField("description", m.Description)
	}
	if m.License != "" {
		appendField("license", m.License)
	}
	return b
}
