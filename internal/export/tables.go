package export

import (
	"strconv"
	"strings"

	"github.com/etomlinson-dev/KYI/internal/accessmap"
	"github.com/etomlinson-dev/KYI/internal/overlap"
	"github.com/etomlinson-dev/KYI/internal/scorer"
)

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Suggestions tabulates ranked candidates.
func Suggestions(cands []scorer.CandidateScore) *Table {
	t := NewTable("Suggestions",
		[]string{"rank", "name", "title", "company", "location", "score", "categories", "fit", "shared_investors", "reasons"},
		0, 5, 6, 7, 8)
	for i, c := range cands {
		t.Add(
			strconv.Itoa(i+1),
			c.Connection.Name,
			c.Connection.Title,
			c.Connection.Company,
			c.Connection.Location,
			num(c.Score),
			strconv.Itoa(c.Categories),
			num(c.Fit.Total),
			strconv.Itoa(len(c.SharedInvestors)),
			strings.Join(c.Fit.Reasons, "; "),
		)
	}
	return t
}

// Overlap tabulates the headline metrics and top overlapping entities.
func Overlap(m overlap.Metrics) *Table {
	t := NewTable("Overlap", []string{"metric", "value"}, 1)
	for _, kv := range []struct {
		k string
		v string
	}{
		{"investors", strconv.Itoa(m.Investors)},
		{"total_nodes", strconv.Itoa(m.TotalNodes)},
		{"total_edges", strconv.Itoa(m.TotalEdges)},
		{"unique_people", strconv.Itoa(m.UniquePeople)},
		{"unique_orgs", strconv.Itoa(m.UniqueOrgs)},
		{"overlap_people", strconv.Itoa(m.OverlapPeople)},
		{"overlap_orgs", strconv.Itoa(m.OverlapOrgs)},
		{"people_overlap_pct", num(round2(m.PeopleOverlapPct))},
		{"org_overlap_pct", num(round2(m.OrgOverlapPct))},
		{"overlap_pct", num(round2(m.OverlapPct))},
		{"collapse_count", strconv.Itoa(m.CollapseCount)},
		{"collapse_rate", num(round2(m.CollapseRate))},
		{"skipped_records", strconv.Itoa(m.Report.SkippedRecords)},
		{"dropped_networks", strconv.Itoa(m.Report.DroppedNetworks)},
	} {
		t.Add(kv.k, kv.v)
	}
	return t
}

// TopEntities tabulates overlapping people or orgs.
func TopEntities(name string, entities []overlap.Entity) *Table {
	t := NewTable(name, []string{"label", "key", "investors"}, 2)
	for _, e := range entities {
		t.Add(e.Label, e.Key, strconv.Itoa(e.Count))
	}
	return t
}

// Reach tabulates per-investor reach.
func Reach(rs []accessmap.InvestorReach) *Table {
	t := NewTable("Reach", []string{"investor_id", "name", "direct", "exclusive", "orgs", "strength"}, 2, 3, 4, 5)
	for _, r := range rs {
		t.Add(r.InvestorID, r.Label, strconv.Itoa(r.Direct), strconv.Itoa(r.Exclusive), strconv.Itoa(r.Orgs), num(r.Strength))
	}
	return t
}

// Edges tabulates access map edges.
func Edges(g *accessmap.Graph) *Table {
	t := NewTable("Edges", []string{"from", "to", "type", "weight"}, 3)
	for _, e := range g.Edges {
		t.Add(e.From, e.To, string(e.Type), num(e.Weight))
	}
	return t
}

// round2 rounds for display only.
func round2(f float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	return v
}

// Matrix tabulates pairwise shared-people counts.
func Matrix(m overlap.Matrix) *Table {
	header := []string{"investor"}
	cols := make([]int, 0, len(m.Investors))
	for i, inv := range m.Investors {
		header = append(header, inv.Name)
		cols = append(cols, i+1)
	}
	t := NewTable("Matrix", header, cols...)
	for i, inv := range m.Investors {
		row := []string{inv.Name}
		for j := range m.Investors {
			v := 0
			if i < len(m.Counts) && j < len(m.Counts[i]) {
				v = m.Counts[i][j]
			}
			row = append(row, strconv.Itoa(v))
		}
		t.Add(row...)
	}
	return t
}

// GraphSummary tabulates access map counts and the records dropped while
// building it.
func GraphSummary(g *accessmap.Graph) *Table {
	m := g.Metrics()
	t := NewTable("Summary",
		[]string{"company_id", "nodes", "edges", "investors", "people", "orgs", "skipped_records", "dropped_networks"},
		1, 2, 3, 4, 5, 6, 7)
	t.Add(g.CompanyID, strconv.Itoa(m.Nodes), strconv.Itoa(m.Edges), strconv.Itoa(m.Investors), strconv.Itoa(m.People), strconv.Itoa(m.Orgs),
		strconv.Itoa(g.Report.SkippedRecords), strconv.Itoa(g.Report.DroppedNetworks))
	return t
}

// Nodes tabulates access map nodes.
func Nodes(name string, nodes []accessmap.Node) *Table {
	t := NewTable(name, []string{"key", "type", "label", "ring", "count"}, 3, 4)
	for _, n := range nodes {
		t.Add(n.Key, string(n.Type), n.Label, strconv.Itoa(n.Ring), strconv.Itoa(n.Count))
	}
	return t
}
