package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etomlinson-dev/KYI/internal/model"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "janedoe", "janedoe", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"dropped letter", "jonsmith", "johnsmith", 16.0 / 17.0},
		{"longer variant", "jonathansmithson", "johnsmith", 18.0 / 25.0},
		{"classic", "abcd", "bcde", 0.75},
		{"multibyte", "zoë", "zoe", 4.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatio_TieBreaksEarliestInFirst(t *testing.T) {
	// Every rune matches once; which one anchors the first block decides
	// how much is left to match on either side.
	assert.InDelta(t, 0.25, Ratio("tide", "diet"), 1e-9)
	assert.InDelta(t, 0.5, Ratio("diet", "tide"), 1e-9)

	// Repeated blocks still count once per side.
	assert.InDelta(t, 0.8, Ratio("abxab", "abyab"), 1e-9)
	assert.InDelta(t, 4.0/7.0, Ratio("xab", "abab"), 1e-9)
}

func investors() []model.Investor {
	return []model.Investor{
		{ID: "inv-1", Name: "Alice Park", Title: "Partner", Company: "Acme Ventures", ExternalID: "U1"},
		{ID: "inv-2", Name: "John Smith", Title: "Principal", Company: "Acme Capital"},
		{ID: "inv-3", Name: "Dana Li", Title: "", Company: ""},
	}
}

func TestDeduplicator_IdentifierMatch(t *testing.T) {
	d := NewDeduplicator(investors(), DefaultMatchers(0.88))

	ex, ok := d.Check(model.Connection{Name: "Totally Different", ExternalID: "u1/"})
	require.True(t, ok)
	assert.Equal(t, MatchIdentifier, ex.Matcher)
	assert.Equal(t, "inv-1", ex.InvestorID)
}

func TestDeduplicator_NameMatch(t *testing.T) {
	d := NewDeduplicator(investors(), DefaultMatchers(0.88))

	ex, ok := d.Check(model.Connection{Name: "dana   LI", Company: "Elsewhere"})
	require.True(t, ok)
	assert.Equal(t, MatchName, ex.Matcher)
	assert.Equal(t, "inv-3", ex.InvestorID)

	ex, ok = d.Check(model.Connection{Name: "Alice Q. Park"})
	require.True(t, ok)
	assert.Equal(t, MatchName, ex.Matcher)
	assert.Equal(t, "inv-1", ex.InvestorID)
}

func TestDeduplicator_ContextFuzzy(t *testing.T) {
	d := NewDeduplicator(investors(), DefaultMatchers(0.88))

	tests := []struct {
		name     string
		conn     model.Connection
		excluded bool
	}{
		{
			name:     "near spelling same context",
			conn:     model.Connection{Name: "Jon Smith", Company: "acme capital ", Title: "PRINCIPAL"},
			excluded: true,
		},
		{
			name:     "longer name same context",
			conn:     model.Connection{Name: "Jonathan Smithson", Company: "Acme Capital", Title: "Principal"},
			excluded: false,
		},
		{
			name:     "near spelling different title",
			conn:     model.Connection{Name: "Jon Smith", Company: "Acme Capital", Title: "Partner"},
			excluded: false,
		},
		{
			name:     "near spelling no context",
			conn:     model.Connection{Name: "Jon Smith"},
			excluded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, ok := d.Check(tt.conn)
			assert.Equal(t, tt.excluded, ok)
			if tt.excluded {
				assert.Equal(t, MatchFuzzy, ex.Matcher)
				assert.Equal(t, "inv-2", ex.InvestorID)
			}
		})
	}
}

func TestDeduplicator_CascadeOrder(t *testing.T) {
	invs := []model.Investor{
		{ID: "by-name", Name: "Jane Doe"},
		{ID: "by-id", Name: "Someone Else", ExternalID: "https://linkedin.com/in/jdoe"},
	}
	d := NewDeduplicator(invs, DefaultMatchers(0.88))

	// Identifier runs before name even though the name match is earlier in the list.
	ex, ok := d.Check(model.Connection{Name: "Jane Doe", ExternalID: "HTTPS://linkedin.com/in/jdoe/"})
	require.True(t, ok)
	assert.Equal(t, MatchIdentifier, ex.Matcher)
	assert.Equal(t, "by-id", ex.InvestorID)
}

func TestDeduplicator_EmptyValuesNeverMatch(t *testing.T) {
	invs := []model.Investor{{ID: "blank", Name: "...", ExternalID: " "}}
	d := NewDeduplicator(invs, DefaultMatchers(0.0))

	_, ok := d.Check(model.Connection{Name: "!!!", ExternalID: ""})
	assert.False(t, ok)
}

func TestDeduplicator_NoMatchers(t *testing.T) {
	d := NewDeduplicator(investors(), nil)
	_, ok := d.Check(model.Connection{Name: "John Smith", ExternalID: "U1"})
	assert.False(t, ok)
}

// No candidate that matches an investor by any matcher survives, whatever
// the investor order.
func TestDeduplicator_NeverPassesAKnownInvestor(t *testing.T) {
	invs := investors()
	d := NewDeduplicator(invs, DefaultMatchers(0.88))

	for _, inv := range invs {
		conn := model.Connection{
			Name:       inv.Name,
			Title:      inv.Title,
			Company:    inv.Company,
			ExternalID: inv.ExternalID,
		}
		ex, ok := d.Check(conn)
		require.True(t, ok, inv.ID)
		assert.Equal(t, inv.ID, ex.InvestorID)
	}
}
