// SPDX-License-Identifier: MPL-2.0

package dscmod

import (
	"context"
	"path/filepath"
	"testing"

	"dscpack-cli/internal/issue"
)

func installFlat(t *testing.T, root, name, version string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	writeManifest(t, dir, "name = \""+name+"\"\nversion = \""+version+"\"\n")
	return dir
}

func installVersioned(t *testing.T, root, name, version string) string {
	t.Helper()
	dir := filepath.Join(root, name, version)
	writeManifest(t, dir, "name = \""+name+"\"\nversion = \""+version+"\"\n")
	return dir
}

func TestPathResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("flat layout", func(t *testing.T) {
		root := t.TempDir()
		want := installFlat(t, root, "xNetworking", "5.7.0")

		r := NewPathResolver([]string{root})
		got, err := r.Resolve(ctx, "xNetworking", "")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if got != want {
			t.Errorf("Resolve() = %q, want %q", got, want)
		}
	})

	t.Run("flat layout with version mismatch", func(t *testing.T) {
		root := t.TempDir()
		installFlat(t, root, "xNetworking", "5.7.0")

		r := NewPathResolver([]string{root})
		_, err := r.Resolve(ctx, "xNetworking", "6.0.0")
		if err == nil {
			t.Fatal("Resolve() expected not-installed error")
		}
		if !issue.HasCategory(err, issue.InvalidOperation) {
			t.Errorf("category = %v, want InvalidOperation", issue.CategoryOf(err))
		}
	})

	t.Run("side-by-side exact version", func(t *testing.T) {
		root := t.TempDir()
		installVersioned(t, root, "SqlServerDsc", "15.2.0")
		want := installVersioned(t, root, "SqlServerDsc", "16.0.0")

		r := NewPathResolver([]string{root})
		got, err := r.Resolve(ctx, "SqlServerDsc", "16.0.0")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if got != want {
			t.Errorf("Resolve() = %q, want %q", got, want)
		}
	})

	t.Run("side-by-side highest version wins", func(t *testing.T) {
		root := t.TempDir()
		installVersioned(t, root, "SqlServerDsc", "9.0.0")
		want := installVersioned(t, root, "SqlServerDsc", "16.0.0")
		installVersioned(t, root, "SqlServerDsc", "15.2.0")

		r := NewPathResolver([]string{root})
		got, err := r.Resolve(ctx, "SqlServerDsc", "")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if got != want {
			t.Errorf("Resolve() = %q, want %q", got, want)
		}
	})

	t.Run("roots scanned in order", func(t *testing.T) {
		first := t.TempDir()
		second := t.TempDir()
		want := installFlat(t, first, "xWebAdministration", "1.0.0")
		installFlat(t, second, "xWebAdministration", "2.0.0")

		r := NewPathResolver([]string{first, second})
		got, err := r.Resolve(ctx, "xWebAdministration", "")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if got != want {
			t.Errorf("Resolve() = %q, want first root %q", got, want)
		}
	})

	t.Run("not installed", func(t *testing.T) {
		r := NewPathResolver([]string{t.TempDir()})
		_, err := r.Resolve(ctx, "Ghost", "")
		if err == nil {
			t.Fatal("Resolve() expected error")
		}
		if !issue.HasCategory(err, issue.InvalidOperation) {
			t.Errorf("category = %v, want InvalidOperation", issue.CategoryOf(err))
		}
	})

	t.Run("missing root is skipped", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "gone")
		root := t.TempDir()
		want := installFlat(t, root, "xNetworking", "5.7.0")

		r := NewPathResolver([]string{missing, root})
		got, err := r.Resolve(ctx, "xNetworking", "")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if got != want {
			t.Errorf("Resolve() = %q, want %q", got, want)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		r := NewPathResolver([]string{t.TempDir()})
		if _, err := r.Resolve(cancelled, "xNetworking", ""); err == nil {
			t.Fatal("Resolve() expected context error")
		}
	})
}

func TestShellResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("prints module directory", func(t *testing.T) {
		root := t.TempDir()
		want := installFlat(t, root, "xNetworking", "5.7.0")

		r := NewShellResolver("printf '%s' \"" + want + "\"")
		got, err := r.Resolve(ctx, "xNetworking", "5.7.0")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if got != want {
			t.Errorf("Resolve() = %q, want %q", got, want)
		}
	})

	t.Run("receives module name in environment", func(t *testing.T) {
		root := t.TempDir()
		want := installFlat(t, root, "xNetworking", "5.7.0")

		r := NewShellResolver("printf '%s/%s' \"" + root + "\" \"$DSC_MODULE_NAME\"")
		got, err := r.Resolve(ctx, "xNetworking", "")
		if err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
		if got != want {
			t.Errorf("Resolve() = %q, want %q", got, want)
		}
	})

	t.Run("nonzero exit means not found", func(t *testing.T) {
		r := NewShellResolver("exit 3")
		_, err := r.Resolve(ctx, "Ghost", "")
		if err == nil {
			t.Fatal("Resolve() expected error")
		}
		if !issue.HasCategory(err, issue.InvalidOperation) {
			t.Errorf("category = %v, want InvalidOperation", issue.CategoryOf(err))
		}
	})

	t.Run("empty output is an error", func(t *testing.T) {
		r := NewShellResolver("true")
		if _, err := r.Resolve(ctx, "Ghost", ""); err == nil {
			t.Fatal("Resolve() expected error for empty output")
		}
	})

	t.Run("output must be a directory", func(t *testing.T) {
		r := NewShellResolver("printf '%s' /nonexistent/module/dir")
		if _, err := r.Resolve(ctx, "Ghost", ""); err == nil {
			t.Fatal("Resolve() expected error for missing directory")
		}
	})

	t.Run("syntax error in command", func(t *testing.T) {
		r := NewShellResolver("if then fi ((")
		if _, err := r.Resolve(ctx, "Ghost", ""); err == nil {
			t.Fatal("Resolve() expected parse error")
		}
	})
}
