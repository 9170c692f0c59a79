// SPDX-License-Identifier: MPL-2.0

package dscfile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"dscpack-cli/internal/issue"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.ps1")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	t.Run("import-dscresource with single module", func(t *testing.T) {
		cfg, err := Parse(writeScript(t, `
Configuration WebServer {
    Import-DscResource -ModuleName xWebAdministration
    Node "localhost" {}
}
`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		want := map[string]string{"xWebAdministration": ""}
		if !reflect.DeepEqual(cfg.Requirements, want) {
			t.Errorf("Requirements = %v, want %v", cfg.Requirements, want)
		}
	})

	t.Run("import-dscresource with version", func(t *testing.T) {
		cfg, err := Parse(writeScript(t,
			`Import-DscResource -ModuleName xNetworking -ModuleVersion 5.7.0`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		if cfg.Requirements["xNetworking"] != "5.7.0" {
			t.Errorf("version = %q, want %q", cfg.Requirements["xNetworking"], "5.7.0")
		}
	})

	t.Run("comma separated and quoted names", func(t *testing.T) {
		cfg, err := Parse(writeScript(t,
			`Import-DscResource -ModuleName 'xWebAdministration', "xNetworking", xPSDesiredStateConfiguration`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		if len(cfg.Requirements) != 3 {
			t.Errorf("Requirements = %v, want 3 modules", cfg.Requirements)
		}
	})

	t.Run("module hashtable", func(t *testing.T) {
		cfg, err := Parse(writeScript(t,
			`Import-DscResource -ModuleName @{ModuleName = 'SqlServerDsc'; ModuleVersion = '16.0.0'}`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		if cfg.Requirements["SqlServerDsc"] != "16.0.0" {
			t.Errorf("Requirements = %v", cfg.Requirements)
		}
	})

	t.Run("requires directive", func(t *testing.T) {
		cfg, err := Parse(writeScript(t, `#Requires -Modules xActiveDirectory, @{ModuleName='xDnsServer'; RequiredVersion='2.0.0'}
Configuration Dc {}
`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		want := map[string]string{"xActiveDirectory": "", "xDnsServer": "2.0.0"}
		if !reflect.DeepEqual(cfg.Requirements, want) {
			t.Errorf("Requirements = %v, want %v", cfg.Requirements, want)
		}
	})

	t.Run("builtin module is removed", func(t *testing.T) {
		cfg, err := Parse(writeScript(t,
			`Import-DscResource -ModuleName PSDesiredStateConfiguration, Foo`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		if _, found := cfg.Requirements[BuiltinModule]; found {
			t.Error("builtin module must not appear in requirements")
		}
		if _, found := cfg.Requirements["Foo"]; !found {
			t.Error("Foo should remain in requirements")
		}
	})

	t.Run("directives inside comments are ignored", func(t *testing.T) {
		cfg, err := Parse(writeScript(t, `
# Import-DscResource -ModuleName Commented
<#
Import-DscResource -ModuleName BlockCommented
#>
Import-DscResource -ModuleName Real
`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		want := map[string]string{"Real": ""}
		if !reflect.DeepEqual(cfg.Requirements, want) {
			t.Errorf("Requirements = %v, want %v", cfg.Requirements, want)
		}
	})

	t.Run("no requirements", func(t *testing.T) {
		cfg, err := Parse(writeScript(t, `Configuration Empty { Node "localhost" {} }`))
		if err != nil {
			t.Fatalf("Parse() failed: %v", err)
		}
		if len(cfg.Requirements) != 0 {
			t.Errorf("Requirements = %v, want empty", cfg.Requirements)
		}
	})

	t.Run("unreadable file reports PermissionDenied", func(t *testing.T) {
		_, err := Parse(filepath.Join(t.TempDir(), "missing.ps1"))
		if err == nil {
			t.Fatal("Parse() expected error for missing file")
		}
		if !issue.HasCategory(err, issue.PermissionDenied) {
			t.Errorf("category = %v, want PermissionDenied", issue.CategoryOf(err))
		}
	})
}

func TestParseErrorsAggregate(t *testing.T) {
	_, err := Parse(writeScript(t, `
Import-DscResource
Import-DscResource -ModuleName Foo -ModuleVersion not.a.version
Import-DscResource -ModuleName Bar -ModuleVersion 1.0
Import-DscResource -ModuleName Bar -ModuleVersion 2.0
`))
	if err == nil {
		t.Fatal("Parse() expected aggregated parse errors")
	}
	if !issue.HasCategory(err, issue.ParserError) {
		t.Fatalf("category = %v, want ParserError", issue.CategoryOf(err))
	}

	msg := err.Error()
	for _, want := range []string{
		"missing a -ModuleName argument",
		`invalid module version "not.a.version"`,
		"conflicting versions",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregated error missing %q:\n%s", want, msg)
		}
	}
}

func TestRequiredModules(t *testing.T) {
	cfg := &Configuration{Requirements: map[string]string{"b": "", "a": "1.0", "c": ""}}
	got := cfg.RequiredModules()
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RequiredModules() = %v, want %v", got, want)
	}
}

func TestStripBlockComment(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		inComment bool
		wantLine  string
		wantState bool
	}{
		{"plain", "abc", false, "abc", false},
		{"opens", "abc <# x", false, "abc ", true},
		{"closes", "x #> abc", true, " abc", false},
		{"inline", "a <# x #> b", false, "a  b", false},
		{"inside", "anything", true, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLine, gotState := stripBlockComment(tt.line, tt.inComment)
			if gotLine != tt.wantLine || gotState != tt.wantState {
				t.Errorf("stripBlockComment(%q, %v) = (%q, %v), want (%q, %v)",
					tt.line, tt.inComment, gotLine, gotState, tt.wantLine, tt.wantState)
			}
		})
	}
}
