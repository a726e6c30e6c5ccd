// Package normalize canonicalizes names and extracts keyword tokens from
// free-text profile fields.
package normalize

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name produces a stable identity key for a person's name:
//  1. Lowercasing and folding accents ("José" -> "jose")
//  2. Stripping punctuation
//  3. Dropping single-letter middle initials
//  4. Joining the remaining tokens without spaces
//
// "Jane A. Doe" and "jane doe" both map to "janedoe".
func Name(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = fold(s)

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)

	parts := strings.Fields(s)
	kept := parts[:0]
	for i, p := range parts {
		if i > 0 && i < len(parts)-1 && len([]rune(p)) == 1 {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "")
}

// Org returns the identity key for an organization name.
func Org(company string) string {
	return strings.Join(strings.Fields(strings.ToLower(company)), " ")
}

// Identifier canonicalizes an external identifier such as a profile URL.
func Identifier(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.TrimSuffix(id, "/")
}

// Text lowercases and collapses whitespace for comparisons of free text
// such as titles.
func Text(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// fold strips combining marks after NFKD decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// sortedKeys returns the keys of set in ascending order.
func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
