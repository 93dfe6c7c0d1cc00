// Package ident turns user-supplied labels into lowercase snake_case SQL
// identifiers and back into display labels.
package ident

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
)

var ErrInvalidIdentifier = fmt.Errorf("invalid identifier: %w", apperr.ErrInvalidInput)

var titler = cases.Title(language.English)

// Normalize lower-cases raw and converts it to snake_case. Words are split on
// case changes and on separators (spaces, punctuation, symbols). Accents are
// folded away and other non-ASCII letters dropped without splitting the
// word they sit in. The result only contains
// [a-z0-9_], never starts or ends with an underscore and never contains two
// in a row, so Normalize is idempotent.
func Normalize(raw string) (string, error) {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := foldASCII(raw)
	for i, r := range runes {
		if !isAlnum(r) {
			flush()
			continue
		}
		if isUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && isLower(runes[i+1])
			// fooBar, foo2Bar, and the last capital of an acronym: HTTPServer
			if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	out := strings.Join(words, "_")
	if out == "" {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidIdentifier)
	}
	return out, nil
}

// Valid reports whether id is already in normalized form.
func Valid(id string) bool {
	if id == "" || id[0] == '_' || id[len(id)-1] == '_' {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '_':
			if id[i-1] == '_' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Labelize derives a display label: "cover_image" becomes "Cover Image".
func Labelize(id string) string {
	return titler.String(strings.ReplaceAll(id, "_", " "))
}

// foldASCII decomposes accented letters and drops what is left outside
// ASCII when it is a letter, digit or mark, so "Déf" reads as "Def" and
// "Ärger" as "Arger". Other runes (spaces, punctuation, symbols) are kept
// and later act as separators.
func foldASCII(raw string) []rune {
	out := make([]rune, 0, len(raw))
	for _, r := range norm.NFD.String(raw) {
		if r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func isAlnum(r rune) bool { return isLower(r) || isUpper(r) || isDigit(r) }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
