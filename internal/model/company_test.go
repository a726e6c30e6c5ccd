package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_SkipsMissingNames(t *testing.T) {
	in := []InvestorNetwork{
		{
			Investor: Investor{ID: "inv-1", Name: "Ada"},
			Connections: []Connection{
				{Name: "Jane Doe"},
				{Name: "   "},
				{Name: ""},
				{Name: "John Roe", InvestorID: "inv-1"},
			},
		},
	}

	out, report := Sanitize(in)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Connections, 2)
	assert.Equal(t, 2, report.SkippedRecords)
	assert.Equal(t, 2, report.Connections)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "inv-1", report.Issues[0].InvestorID)
	assert.Equal(t, 2, report.Issues[0].Skipped[SkipMissingName])
	assert.False(t, report.Issues[0].Dropped)
}

func TestSanitize_StampsOwner(t *testing.T) {
	out, _ := Sanitize([]InvestorNetwork{
		{Investor: Investor{ID: " inv-1 "}, Connections: []Connection{{Name: "Jane"}}},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "inv-1", out[0].Investor.ID)
	assert.Equal(t, "inv-1", out[0].Connections[0].InvestorID)
}

func TestSanitize_IsolatesCorruptedInvestor(t *testing.T) {
	in := []InvestorNetwork{
		{Investor: Investor{ID: "inv-1"}, Connections: []Connection{{Name: "A"}}},
		{Investor: Investor{ID: ""}, Connections: []Connection{{Name: "B"}, {Name: "C"}}},
		{Investor: Investor{ID: "inv-1"}, Connections: []Connection{{Name: "D"}}},
		{Investor: Investor{ID: "inv-3"}, Connections: []Connection{
			{Name: "E"},
			{Name: "F", InvestorID: "inv-9"},
		}},
	}

	out, report := Sanitize(in)
	require.Len(t, out, 2)
	assert.Equal(t, "inv-1", out[0].Investor.ID)
	assert.Equal(t, "inv-3", out[1].Investor.ID)
	assert.Len(t, out[1].Connections, 1)

	assert.Equal(t, 2, report.Investors)
	assert.Equal(t, 2, report.DroppedNetworks)
	assert.Equal(t, 4, report.SkippedRecords)
	require.Len(t, report.Issues, 3)
	assert.Equal(t, SkipMissingID, report.Issues[0].Reason)
	assert.Equal(t, 1, report.Issues[0].Index)
	assert.Equal(t, SkipDuplicateID, report.Issues[1].Reason)
	assert.Equal(t, 1, report.Issues[2].Skipped[SkipForeignInvestor])
}

func TestSanitize_Empty(t *testing.T) {
	out, report := Sanitize(nil)
	assert.Empty(t, out)
	assert.Zero(t, report.SkippedRecords)
	assert.Empty(t, report.Issues)
}
