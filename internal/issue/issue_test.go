// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	for _, cat := range []Category{
		InvalidArgument,
		PermissionDenied,
		ParserError,
		InvalidOperation,
		PreconditionFailure,
	} {
		t.Run(string(cat), func(t *testing.T) {
			g := Get(cat)
			if g == nil {
				t.Fatalf("Get(%q) = nil, every category needs guidance", cat)
			}
			if g.Category() != cat {
				t.Errorf("Category() = %q, want %q", g.Category(), cat)
			}
			if strings.TrimSpace(g.MarkdownMsg()) == "" {
				t.Error("guidance body is empty")
			}
		})
	}

	t.Run("unknown category", func(t *testing.T) {
		if g := Get(Category("Nonsense")); g != nil {
			t.Errorf("Get() = %v, want nil", g)
		}
	})
}

func TestGuidanceRender(t *testing.T) {
	origRender := render
	defer func() { render = origRender }()

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return "rendered:" + in, nil
	}

	g := Get(ParserError)
	out, err := g.Render("dark")
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style path = %q, want %q", gotStyle, "dark")
	}
	if !strings.HasPrefix(out, "rendered:") {
		t.Errorf("Render() = %q, expected stubbed output", out)
	}
}
