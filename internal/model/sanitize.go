package model

import (
	"strings"
)

// Skip reasons recorded in an IngestReport.
const (
	SkipMissingName     = "missing_name"
	SkipForeignInvestor = "foreign_investor"
	SkipMissingID       = "missing_investor_id"
	SkipDuplicateID     = "duplicate_investor_id"
)

// InvestorIssue describes records dropped for a single investor.
type InvestorIssue struct {
	InvestorID string         `json:"investor_id"`
	Index      int            `json:"index"` // position in the input
	Dropped    bool           `json:"dropped"`
	Reason     string         `json:"reason,omitempty"`
	Skipped    map[string]int `json:"skipped,omitempty"`
}

// IngestReport summarizes what Sanitize removed.
type IngestReport struct {
	Investors       int             `json:"investors"`
	Connections     int             `json:"connections"`
	SkippedRecords  int             `json:"skipped_records"`
	DroppedNetworks int             `json:"dropped_networks"`
	Issues          []InvestorIssue `json:"issues,omitempty"`
}

// Sanitize drops malformed records so that one bad row or one corrupted
// investor export never aborts a company-wide computation. Valid networks
// are returned in input order with every connection's InvestorID set to its
// owner.
func Sanitize(networks []InvestorNetwork) ([]InvestorNetwork, IngestReport) {
	var report IngestReport
	seen := make(map[string]bool, len(networks))
	out := make([]InvestorNetwork, 0, len(networks))

	for i, n := range networks {
		id := strings.TrimSpace(n.Investor.ID)
		switch {
		case id == "":
			report.dropNetwork(i, id, SkipMissingID, len(n.Connections))
			continue
		case seen[id]:
			report.dropNetwork(i, id, SkipDuplicateID, len(n.Connections))
			continue
		}
		seen[id] = true

		inv := n.Investor
		inv.ID = id
		clean := InvestorNetwork{Investor: inv, Connections: make([]Connection, 0, len(n.Connections))}
		skipped := map[string]int{}
		for _, c := range n.Connections {
			owner := strings.TrimSpace(c.InvestorID)
			switch {
			case strings.TrimSpace(c.Name) == "":
				skipped[SkipMissingName]++
				continue
			case owner != "" && owner != id:
				skipped[SkipForeignInvestor]++
				continue
			}
			c.InvestorID = id
			clean.Connections = append(clean.Connections, c)
		}

		if len(skipped) > 0 {
			total := 0
			for _, v := range skipped {
				total += v
			}
			report.SkippedRecords += total
			report.Issues = append(report.Issues, InvestorIssue{
				InvestorID: id,
				Index:      i,
				Skipped:    skipped,
			})
		}
		report.Investors++
		report.Connections += len(clean.Connections)
		out = append(out, clean)
	}
	return out, report
}

func (r *IngestReport) dropNetwork(index int, id, reason string, connections int) {
	r.DroppedNetworks++
	r.SkippedRecords += connections
	r.Issues = append(r.Issues, InvestorIssue{
		InvestorID: id,
		Index:      index,
		Dropped:    true,
		Reason:     reason,
	})
}
