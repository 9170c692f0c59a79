// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableErrorError(t *testing.T) {
	t.Run("operation only", func(t *testing.T) {
		err := NewErrorContext().WithOperation("parse configuration").BuildError()
		if got := err.Error(); got != "failed to parse configuration" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("operation with resource and cause", func(t *testing.T) {
		cause := errors.New("no such file")
		err := NewErrorContext().
			WithOperation("parse configuration").
			WithResource("demo.ps1").
			Wrap(cause).
			BuildError()
		want := "failed to parse configuration: demo.ps1: no such file"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("missing operation yields nil", func(t *testing.T) {
		if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
			t.Errorf("BuildError() without operation = %v, want nil", err)
		}
	})
}

func TestActionableErrorUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := NewErrorContext().
		WithOperation("upload archive").
		Wrap(fmt.Errorf("wrapped: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() should find the wrapped sentinel")
	}
}

func TestCategoryOf(t *testing.T) {
	t.Run("carried category", func(t *testing.T) {
		err := NewErrorContext().
			WithOperation("validate input").
			WithCategory(InvalidArgument).
			BuildError()
		if got := CategoryOf(err); got != InvalidArgument {
			t.Errorf("CategoryOf() = %q, want %q", got, InvalidArgument)
		}
	})

	t.Run("wrapped category survives fmt.Errorf", func(t *testing.T) {
		inner := NewErrorContext().
			WithOperation("check blob").
			WithCategory(PermissionDenied).
			BuildError()
		outer := fmt.Errorf("publish: %w", inner)
		if got := CategoryOf(outer); got != PermissionDenied {
			t.Errorf("CategoryOf() = %q, want %q", got, PermissionDenied)
		}
	})

	t.Run("plain error defaults to InvalidOperation", func(t *testing.T) {
		if got := CategoryOf(errors.New("boom")); got != InvalidOperation {
			t.Errorf("CategoryOf() = %q, want %q", got, InvalidOperation)
		}
	})
}

func TestHasCategory(t *testing.T) {
	err := NewErrorContext().
		WithOperation("upload archive").
		WithCategory(PermissionDenied).
		BuildError()

	if !HasCategory(err, PermissionDenied) {
		t.Error("HasCategory() should report PermissionDenied")
	}
	if HasCategory(err, ParserError) {
		t.Error("HasCategory() should not report ParserError")
	}
	if HasCategory(errors.New("boom"), PermissionDenied) {
		t.Error("HasCategory() should be false for plain errors")
	}
}

func TestFormat(t *testing.T) {
	err := NewErrorContext().
		WithOperation("archive configuration").
		WithResource("out.zip").
		WithCategory(PermissionDenied).
		WithSuggestion("Pass --force to overwrite").
		Wrap(errors.New("already exists")).
		Build()

	t.Run("non-verbose", func(t *testing.T) {
		got := err.Format(false)
		if !strings.HasPrefix(got, "[PermissionDenied] failed to archive configuration") {
			t.Errorf("Format() = %q", got)
		}
		if !strings.Contains(got, "• Pass --force to overwrite") {
			t.Errorf("Format() missing suggestion: %q", got)
		}
		if strings.Contains(got, "Error chain") {
			t.Error("Format(false) should not include the error chain")
		}
	})

	t.Run("verbose includes chain", func(t *testing.T) {
		got := err.Format(true)
		if !strings.Contains(got, "Error chain:") {
			t.Errorf("Format(true) missing error chain: %q", got)
		}
		if !strings.Contains(got, "1. already exists") {
			t.Errorf("Format(true) missing cause entry: %q", got)
		}
	})
}
