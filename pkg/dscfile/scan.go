// SPDX-License-Identifier: MPL-2.0

package dscfile

import (
	"fmt"
	"regexp"
	"strings"
)

// versionRegex matches dotted module versions like "2", "2.1" or "2.1.0.4".
var versionRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,3}$`)

// addFunc records one (name, version) requirement found on a line.
type addFunc func(line int, name, version string)

// stripBlockComment removes `<# ... #>` comment content from a line,
// carrying open-comment state across lines.
func stripBlockComment(line string, inComment bool) (string, bool) {
	var out strings.Builder
	for {
		if inComment {
			end := strings.Index(line, "#>")
			if end < 0 {
				return out.String(), true
			}
			line = line[end+2:]
			inComment = false
			continue
		}
		start := strings.Index(line, "<#")
		if start < 0 {
			out.WriteString(line)
			return out.String(), false
		}
		out.WriteString(line[:start])
		line = line[start+2:]
		inComment = true
	}
}

// hasFoldPrefix reports whether s starts with prefix, case-insensitively.
func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// indexFold returns the index of the first case-insensitive occurrence of
// sub in s at a word boundary, or -1.
func indexFold(s, sub string) int {
	lower := strings.ToLower(s)
	lowerSub := strings.ToLower(sub)
	from := 0
	for {
		i := strings.Index(lower[from:], lowerSub)
		if i < 0 {
			return -1
		}
		idx := from + i
		atStart := idx == 0 || !isWordByte(lower[idx-1])
		end := idx + len(lowerSub)
		atEnd := end == len(lower) || !isWordByte(lower[end])
		if atStart && atEnd {
			return idx
		}
		from = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// parseRequiresDirective handles `#Requires -Modules ...` lines. Values are
// either bare/quoted module names or hashtables carrying ModuleName plus an
// optional version key.
func parseRequiresDirective(line string, lineNo int, add addFunc, parseErrs *[]error) {
	tokens, err := tokenize(line[len("#requires"):])
	if err != nil {
		*parseErrs = append(*parseErrs, fmt.Errorf("line %d: %w", lineNo, err))
		return
	}

	i := 0
	for i < len(tokens) {
		if !strings.EqualFold(tokens[i].text, "-Modules") || tokens[i].kind != tokenWord {
			i++
			continue
		}
		i++
		found := false
		for i < len(tokens) && !isFlag(tokens[i]) {
			tok := tokens[i]
			i++
			switch tok.kind {
			case tokenHashtable:
				name, version, herr := parseModuleHashtable(tok.text)
				if herr != nil {
					*parseErrs = append(*parseErrs, fmt.Errorf("line %d: %w", lineNo, herr))
					continue
				}
				add(lineNo, name, version)
				found = true
			default:
				add(lineNo, tok.text, "")
				found = true
			}
		}
		if !found {
			*parseErrs = append(*parseErrs, fmt.Errorf("line %d: #Requires -Modules lists no modules", lineNo))
		}
	}
}

// parseImportDirective handles `Import-DscResource ...`. The directive
// starts at the beginning of s and extends to the end of the line.
func parseImportDirective(s string, lineNo int, add addFunc, parseErrs *[]error) {
	tokens, err := tokenize(s[len("Import-DscResource"):])
	if err != nil {
		*parseErrs = append(*parseErrs, fmt.Errorf("line %d: %w", lineNo, err))
		return
	}

	var names []string
	version := ""
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case tok.kind == tokenWord && strings.EqualFold(tok.text, "-ModuleName"):
			i++
			for i < len(tokens) && !isFlag(tokens[i]) {
				val := tokens[i]
				i++
				if val.kind == tokenHashtable {
					name, v, herr := parseModuleHashtable(val.text)
					if herr != nil {
						*parseErrs = append(*parseErrs, fmt.Errorf("line %d: %w", lineNo, herr))
						continue
					}
					add(lineNo, name, v)
					continue
				}
				names = append(names, val.text)
			}
		case tok.kind == tokenWord && strings.EqualFold(tok.text, "-ModuleVersion"):
			i++
			if i >= len(tokens) || isFlag(tokens[i]) {
				*parseErrs = append(*parseErrs, fmt.Errorf("line %d: -ModuleVersion has no value", lineNo))
				continue
			}
			version = tokens[i].text
			i++
			if !versionRegex.MatchString(version) {
				*parseErrs = append(*parseErrs, fmt.Errorf(
					"line %d: invalid module version %q", lineNo, version))
				version = ""
			}
		default:
			i++
		}
	}

	if len(names) == 0 && version == "" && !hasHashtable(tokens) {
		*parseErrs = append(*parseErrs, fmt.Errorf(
			"line %d: Import-DscResource is missing a -ModuleName argument", lineNo))
		return
	}
	if len(names) == 0 && version != "" {
		*parseErrs = append(*parseErrs, fmt.Errorf(
			"line %d: -ModuleVersion given without -ModuleName", lineNo))
		return
	}

	for _, name := range names {
		add(lineNo, name, version)
	}
}

func hasHashtable(tokens []token) bool {
	for _, t := range tokens {
		if t.kind == tokenHashtable {
			return true
		}
	}
	return false
}

// parseModuleHashtable extracts ModuleName and ModuleVersion (or
// RequiredVersion) from a `@{...}` literal.
func parseModuleHashtable(s string) (name, version string, err error) {
	body := strings.TrimSuffix(strings.TrimPrefix(s, "@{"), "}")
	for _, pair := range strings.Split(body, ";") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `'"`)
		switch {
		case strings.EqualFold(key, "ModuleName"):
			name = value
		case strings.EqualFold(key, "ModuleVersion"), strings.EqualFold(key, "RequiredVersion"):
			version = value
		}
	}
	if name == "" {
		return "", "", fmt.Errorf("module hashtable %s has no ModuleName key", s)
	}
	if version != "" && !versionRegex.MatchString(version) {
		return "", "", fmt.Errorf("module %q has invalid version %q", name, version)
	}
	return name, version, nil
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenHashtable
)

type token struct {
	kind tokenKind
	text string
}

func isFlag(t token) bool {
	return t.kind == tokenWord && strings.HasPrefix(t.text, "-")
}

// tokenize splits directive arguments into words, quoted strings, and
// hashtable literals. Commas separate values and produce no token.
func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == ',':
			i++
		case c == '\'' || c == '"':
			quote := c
			end := strings.IndexByte(s[i+1:], quote)
			if end < 0 {
				return nil, fmt.Errorf("unterminated %c-quoted string", quote)
			}
			tokens = append(tokens, token{kind: tokenString, text: s[i+1 : i+1+end]})
			i += end + 2
		case c == '@' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated module hashtable")
			}
			tokens = append(tokens, token{kind: tokenHashtable, text: s[i : i+end+1]})
			i += end + 1
		case c == '#':
			// Trailing comment ends the directive.
			return tokens, nil
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t,#", rune(s[j])) {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, text: s[i:j]})
			i = j
		}
	}
	return tokens, nil
}
