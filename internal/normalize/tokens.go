package normalize

import (
	"strings"
)

// ExtractTokens returns every vocabulary entry contained (case-insensitive
// substring) in text. No stemming is applied. The result is sorted and
// free of duplicates.
func ExtractTokens(text string, vocabulary []string) []string {
	if text == "" || len(vocabulary) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	found := make(map[string]struct{})
	for _, v := range vocabulary {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.Contains(lower, v) {
			found[v] = struct{}{}
		}
	}
	return sortedKeys(found)
}

// ContainsAny reports whether text contains any vocabulary entry.
func ContainsAny(text string, vocabulary []string) bool {
	lower := strings.ToLower(text)
	for _, v := range vocabulary {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

// IndustryTokens splits a free-text industry field ("SaaS / Fintech") on
// '/', ',' and '|'. Tokens shorter than two characters are dropped.
func IndustryTokens(text string) []string {
	parts := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == '/' || r == ',' || r == '|'
	})
	found := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if len(p) > 1 {
			found[p] = struct{}{}
		}
	}
	return sortedKeys(found)
}

// Location is a tokenized location string. Metro is the first
// comma-separated part ("san francisco") and Regions holds the remaining
// parts ("ca").
type Location struct {
	Full    string
	Metro   string
	Regions []string
}

// ParseLocation tokenizes a location string such as "San Francisco, CA".
func ParseLocation(raw string) Location {
	full := Text(raw)
	if full == "" {
		return Location{}
	}
	loc := Location{Full: full}
	for i, part := range strings.Split(full, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i == 0 {
			loc.Metro = part
			continue
		}
		loc.Regions = append(loc.Regions, part)
	}
	return loc
}

// Tokens returns the full string plus every comma-separated part.
func (l Location) Tokens() []string {
	if l.Full == "" {
		return nil
	}
	set := map[string]struct{}{l.Full: {}}
	if l.Metro != "" {
		set[l.Metro] = struct{}{}
	}
	for _, r := range l.Regions {
		set[r] = struct{}{}
	}
	return sortedKeys(set)
}

// LocationTokens is shorthand for ParseLocation(raw).Tokens().
func LocationTokens(raw string) []string {
	return ParseLocation(raw).Tokens()
}
