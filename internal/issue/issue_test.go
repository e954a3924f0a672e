// SPDX-License-Identifier: MPL-2.0

package issue

import "testing"

func TestGetKnownIssues(t *testing.T) {
	t.Parallel()

	ids := []Id{
		RegistryOpenFailedId,
		PackageNotFoundId,
		NoMatchingVersionId,
		InvalidRefId,
		DestinationLockedId,
		ConfigLoadFailedId,
		RemoteSyncFailedId,
	}

	for _, id := range ids {
		is := Get(id)
		if is == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if is.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, is.Id())
		}
		if is.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty message", id)
		}
	}
}

func TestValuesCoversCatalog(t *testing.T) {
	t.Parallel()

	if got := len(Values()); got != len(issues) {
		t.Errorf("Values() returned %d issues, want %d", got, len(issues))
	}
}

func TestRenderUsesRenderer(t *testing.T) {
	// Swaps the package-level renderer; not parallel.
	orig := render
	defer func() { render = orig }()

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return "rendered:" + in, nil
	}

	out, err := Get(InvalidRefId).Render("dark")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
	if out == "" {
		t.Error("Render returned empty output")
	}
}
