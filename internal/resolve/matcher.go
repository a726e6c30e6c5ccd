package resolve

import (
	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/normalize"
)

// Matcher names.
const (
	MatchIdentifier = "identifier"
	MatchName       = "name"
	MatchFuzzy      = "context_fuzzy"
)

// Matcher decides whether a candidate connection is the given investor.
// Implementations are pure.
type Matcher interface {
	Name() string
	Match(c model.Connection, inv model.Investor) bool
}

// Scoped is implemented by matchers that only apply to investors sharing
// the candidate's company and title.
type Scoped interface {
	Matcher
	RequiresContext()
}

// DefaultMatchers returns the identifier, name and context-fuzzy cascade.
func DefaultMatchers(fuzzyThreshold float64) []Matcher {
	return []Matcher{
		IdentifierMatcher{},
		NameMatcher{},
		ContextFuzzyMatcher{Threshold: fuzzyThreshold},
	}
}

// IdentifierMatcher matches on external identifiers such as profile URLs.
type IdentifierMatcher struct{}

func (IdentifierMatcher) Name() string { return MatchIdentifier }

func (IdentifierMatcher) Match(c model.Connection, inv model.Investor) bool {
	a := normalize.Identifier(c.ExternalID)
	return a != "" && a == normalize.Identifier(inv.ExternalID)
}

// NameMatcher matches on the normalized name key.
type NameMatcher struct{}

func (NameMatcher) Name() string { return MatchName }

func (NameMatcher) Match(c model.Connection, inv model.Investor) bool {
	a := normalize.Name(c.Name)
	return a != "" && a == normalize.Name(inv.Name)
}

// ContextFuzzyMatcher matches near-identical names when company and title
// are equal.
type ContextFuzzyMatcher struct {
	Threshold float64
}

func (ContextFuzzyMatcher) Name() string { return MatchFuzzy }

func (ContextFuzzyMatcher) RequiresContext() {}

func (m ContextFuzzyMatcher) Match(c model.Connection, inv model.Investor) bool {
	ck, ok := contextOf(c.Company, c.Title)
	if !ok {
		return false
	}
	ik, ok := contextOf(inv.Company, inv.Title)
	if !ok || ck != ik {
		return false
	}
	a, b := normalize.Name(c.Name), normalize.Name(inv.Name)
	if a == "" || b == "" {
		return false
	}
	return Ratio(a, b) >= m.Threshold
}

type contextKey struct {
	company string
	title   string
}

// contextOf returns the (company, title) key. Records with neither field
// have no context.
func contextOf(company, title string) (contextKey, bool) {
	k := contextKey{company: normalize.Text(company), title: normalize.Text(title)}
	return k, k.company != "" || k.title != ""
}
