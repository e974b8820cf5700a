// Package normalize provides utilities for normalizing and sanitizing user-entered text.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// Text trims s, drops null bytes and composes it to NFC.
// Titles pasted from macOS arrive decomposed (NFD); composing keeps
// equality and search consistent for Hangul and accented Latin.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(norm.NFC.String(s))
}

// Optional normalizes an optional field. Blank values become nil.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Query folds a search query: compatibility-composed and lowercased.
func Query(s string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
}

// ISBN strips separators from an ISBN and uppercases the check digit.
// Returns nil when nothing is left.
func ISBN(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r):
			return r
		case r == 'x' || r == 'X':
			return 'X'
		default:
			return -1
		}
	}, norm.NFKC.String(*s))
	if v == "" {
		return nil
	}
	return &v
}

// containsHTML reports whether s appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Markdown converts HTML content (as sent by rich-text editors) to Markdown.
// Input without HTML is returned trimmed and otherwise unchanged.
func Markdown(s string) string {
	s = Text(s)
	if s == "" || !containsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}

	return strings.TrimSpace(markdown)
}
