package overlap

import (
	"sort"

	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/normalize"
)

// MaxSharedPerPair caps the people listed for an investor pair.
const MaxSharedPerPair = 20

// MatrixInvestor is a row/column of the overlap matrix.
type MatrixInvestor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Connections int    `json:"connections"`
}

// SharedPerson is a person present in both investors' networks.
type SharedPerson struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Pair lists the people shared by investors A and B (indexes, A < B).
type Pair struct {
	A      int            `json:"a"`
	B      int            `json:"b"`
	Count  int            `json:"count"`
	Shared []SharedPerson `json:"shared"`
}

// Matrix holds pairwise shared-people counts between investors.
type Matrix struct {
	Investors []MatrixInvestor `json:"investors"`
	Counts    [][]int          `json:"counts"`
	Pairs     []Pair           `json:"pairs"`

	Report model.IngestReport `json:"report"`
}

// Matrix computes the pairwise overlap between every pair of investors.
// Counts is symmetric with a zero diagonal.
func (a *Analyzer) Matrix(networks []model.InvestorNetwork) Matrix {
	clean, report := model.Sanitize(networks)

	m := Matrix{
		Report:    report,
		Investors: make([]MatrixInvestor, len(clean)),
		Counts:    make([][]int, len(clean)),
	}
	index := make(map[string]int, len(clean))
	for i, n := range clean {
		index[n.Investor.ID] = i
		m.Investors[i] = MatrixInvestor{ID: n.Investor.ID, Name: n.Investor.Name}
		m.Counts[i] = make([]int, len(clean))
	}

	details := make(map[string]SharedPerson)
	reach := make(map[string]map[int]struct{})
	for i, n := range clean {
		for _, c := range n.Connections {
			key := normalize.Name(c.Name)
			if key == "" {
				continue
			}
			m.Investors[i].Connections++
			if _, ok := details[key]; !ok {
				details[key] = SharedPerson{Name: c.Name, Company: c.Company, Title: c.Title}
				reach[key] = make(map[int]struct{})
			}
			reach[key][i] = struct{}{}
		}
	}

	personKeys := make([]string, 0, len(reach))
	for k := range reach {
		personKeys = append(personKeys, k)
	}
	sort.Strings(personKeys)

	pairs := make(map[[2]int]*Pair)
	for _, key := range personKeys {
		idx := make([]int, 0, len(reach[key]))
		for i := range reach[key] {
			idx = append(idx, i)
		}
		if len(idx) < 2 {
			continue
		}
		sort.Ints(idx)
		for x := 0; x < len(idx); x++ {
			for y := x + 1; y < len(idx); y++ {
				i, j := idx[x], idx[y]
				m.Counts[i][j]++
				m.Counts[j][i]++

				p := pairs[[2]int{i, j}]
				if p == nil {
					p = &Pair{A: i, B: j}
					pairs[[2]int{i, j}] = p
				}
				p.Count++
				if len(p.Shared) < MaxSharedPerPair {
					p.Shared = append(p.Shared, details[key])
				}
			}
		}
	}

	for _, p := range pairs {
		m.Pairs = append(m.Pairs, *p)
	}
	sort.Slice(m.Pairs, func(i, j int) bool {
		if m.Pairs[i].A != m.Pairs[j].A {
			return m.Pairs[i].A < m.Pairs[j].A
		}
		return m.Pairs[i].B < m.Pairs[j].B
	})
	return m
}
