package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	_ "modernc.org/sqlite"

	"github.com/etomlinson-dev/KYI/internal/accessmap"
	"github.com/etomlinson-dev/KYI/internal/config"
	"github.com/etomlinson-dev/KYI/internal/model"
	"github.com/etomlinson-dev/KYI/internal/recommend"
)

const testDataset = `
company:
  id: co-1
  name: Acme Robotics
investors:
  - investor:
      id: inv-1
      name: Alice Park
      title: Partner
      company: Summit Ventures
      location: New York, NY
      industry: SaaS
    connections:
      - {name: Jane A. Doe, title: Partner, company: Acme Ventures, location: "San Francisco, CA"}
      - {name: Raj Patel, title: Principal, company: Harbor Capital, location: "Boston, MA"}
      - {name: Bob Stone, title: Engineer, company: Globex, location: "Austin, TX"}
  - investor:
      id: inv-2
      name: Raj Patel
      title: Principal
      company: Harbor Capital
      location: Boston, MA
      industry: Fintech
      external_id: https://linkedin.com/in/rajp
    connections:
      - {name: Bob Stone, title: Engineer, company: Globex, location: "Boston, MA"}
      - {name: Cara Diaz, title: VP Fintech Partnerships, company: Ledgerly, location: "Brooklyn, NY"}
      - {name: Rajesh P, title: Managing Director, company: Harbor Capital, location: Boston, external_id: "HTTPS://linkedin.com/in/rajp/"}
      - {name: Dee Low, title: Engineer, company: Tiny Co, location: "Miami, FL"}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testConfig returns defaults with a throwaway sqlite database.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	c.Store.DatabaseURL = filepath.Join(t.TempDir(), "kyi.db")
	return &c
}

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"suggest", "overlap", "accessmap"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}

	sub := make(map[string]bool)
	for _, c := range accessmapCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"build", "neighborhood", "reach"} {
		assert.True(t, sub[name], "accessmap should have subcommand %q", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "kyi", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.Contains(t, rootCmd.Long, "config.yaml")
	assert.Contains(t, rootCmd.Long, "KYI_STORE_DRIVER")
}

func TestSuggestCommand_Flags(t *testing.T) {
	for _, name := range []string{"dataset", "connections", "sort", "top", "industry", "location", "firm-type", "title", "format", "out", "persist"} {
		assert.NotNil(t, suggestCmd.Flags().Lookup(name), "suggest should have --%s flag", name)
	}
	assert.Equal(t, "table", suggestCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "relevance", suggestCmd.Flags().Lookup("sort").DefValue)
}

func TestLoadInput(t *testing.T) {
	ctx := context.Background()
	dsPath := writeTemp(t, "co.yaml", testDataset)
	csvPath := writeTemp(t, "alice.csv", "First Name,Last Name,Company,Position\nMia,Wong,Northwind,Analyst\n")

	ds, err := loadInput(ctx, inputOptions{Dataset: dsPath, Connections: []string{"inv-1=" + csvPath}})
	require.NoError(t, err)
	require.Len(t, ds.Networks[0].Connections, 4)
	mia := ds.Networks[0].Connections[3]
	assert.Equal(t, "Mia Wong", mia.Name)
	assert.Equal(t, "inv-1", mia.InvestorID)

	tests := []struct {
		name string
		in   inputOptions
	}{
		{"missing dataset", inputOptions{}},
		{"no separator", inputOptions{Dataset: dsPath, Connections: []string{csvPath}}},
		{"empty investor", inputOptions{Dataset: dsPath, Connections: []string{"=" + csvPath}}},
		{"unknown investor", inputOptions{Dataset: dsPath, Connections: []string{"inv-9=" + csvPath}}},
		{"missing file", inputOptions{Dataset: dsPath, Connections: []string{"inv-1=" + filepath.Join(t.TempDir(), "nope.csv")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadInput(ctx, tt.in)
			assert.Error(t, err)
		})
	}
}

func TestRunSuggest_Table(t *testing.T) {
	opts := suggestOptions{inputOptions: inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)}}

	var buf bytes.Buffer
	require.NoError(t, runSuggest(context.Background(), testConfig(t), opts, &buf))

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Cara Diaz")
	assert.Contains(t, out, "Bob Stone")
	assert.NotContains(t, out, "Rajesh P")
}

func TestRunSuggest_JSON(t *testing.T) {
	opts := suggestOptions{
		inputOptions:  inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)},
		outputOptions: outputOptions{Format: "json"},
	}

	var buf bytes.Buffer
	require.NoError(t, runSuggest(context.Background(), testConfig(t), opts, &buf))

	var res recommend.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, "co-1", res.CompanyID)

	var names []string
	for _, s := range res.Suggestions {
		names = append(names, s.Connection.Name)
	}
	assert.Equal(t, []string{"Cara Diaz", "Jane A. Doe", "Bob Stone"}, names)
	assert.Equal(t, 2, res.Stats.Excluded)
}

func TestRunSuggest_Filter(t *testing.T) {
	opts := suggestOptions{
		inputOptions:  inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)},
		outputOptions: outputOptions{Format: "csv"},
		Filter:        recommend.Filter{TitlePattern: "partner"},
	}

	var buf bytes.Buffer
	require.NoError(t, runSuggest(context.Background(), testConfig(t), opts, &buf))
	assert.Contains(t, buf.String(), "Jane A. Doe")
	assert.NotContains(t, buf.String(), "Bob Stone")
}

func TestRunSuggest_XLSX(t *testing.T) {
	dsPath := writeTemp(t, "co.yaml", testDataset)

	t.Run("requires out", func(t *testing.T) {
		opts := suggestOptions{inputOptions: inputOptions{Dataset: dsPath}, outputOptions: outputOptions{Format: "xlsx"}}
		err := runSuggest(context.Background(), testConfig(t), opts, &bytes.Buffer{})
		assert.ErrorContains(t, err, "requires --out")
	})

	t.Run("writes workbook", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "suggestions.xlsx")
		opts := suggestOptions{inputOptions: inputOptions{Dataset: dsPath}, outputOptions: outputOptions{Format: "xlsx", Out: out}}
		require.NoError(t, runSuggest(context.Background(), testConfig(t), opts, &bytes.Buffer{}))

		f, err := xlsx.OpenFile(out)
		require.NoError(t, err)
		require.Len(t, f.Sheets, 1)
		require.Len(t, f.Sheets[0].Rows, 4)
		assert.Equal(t, "Cara Diaz", f.Sheets[0].Rows[1].Cells[1].String())
	})
}

func TestRunSuggest_Errors(t *testing.T) {
	dsPath := writeTemp(t, "co.yaml", testDataset)

	t.Run("invalid config", func(t *testing.T) {
		c := testConfig(t)
		c.Recommend.MinSignalCategories = 0
		err := runSuggest(context.Background(), c, suggestOptions{inputOptions: inputOptions{Dataset: dsPath}}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "validation failed")
	})

	t.Run("bad sort", func(t *testing.T) {
		err := runSuggest(context.Background(), testConfig(t), suggestOptions{inputOptions: inputOptions{Dataset: dsPath}, Sort: "alphabetical"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		opts := suggestOptions{inputOptions: inputOptions{Dataset: dsPath}, outputOptions: outputOptions{Format: "yaml"}}
		err := runSuggest(context.Background(), testConfig(t), opts, &bytes.Buffer{})
		assert.ErrorContains(t, err, "unknown format")
	})
}

func TestRunSuggest_Persist(t *testing.T) {
	c := testConfig(t)
	opts := suggestOptions{inputOptions: inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)}, Persist: true}

	require.NoError(t, runSuggest(context.Background(), c, opts, &bytes.Buffer{}))
	require.NoError(t, runSuggest(context.Background(), c, opts, &bytes.Buffer{}))
	assert.Equal(t, 2, countRows(t, c.Store.DatabaseURL, "suggestion_snapshots"))
}

func TestRunOverlap(t *testing.T) {
	c := testConfig(t)
	opts := overlapOptions{
		inputOptions:  inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)},
		outputOptions: outputOptions{Format: "json"},
		Matrix:        true,
		Persist:       true,
	}

	var buf bytes.Buffer
	require.NoError(t, runOverlap(context.Background(), c, opts, &buf))

	var report overlapReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "co-1", report.CompanyID)
	assert.Equal(t, 2, report.Metrics.Investors)
	assert.Equal(t, 1, report.Metrics.OverlapPeople)
	assert.Equal(t, model.IngestReport{Investors: 2, Connections: 7}, report.Metrics.Report)
	require.NotNil(t, report.Matrix)
	assert.Equal(t, [][]int{{0, 1}, {1, 0}}, report.Matrix.Counts)
	require.Len(t, report.Matrix.Pairs, 1)
	assert.Equal(t, "Bob Stone", report.Matrix.Pairs[0].Shared[0].Name)

	assert.Equal(t, 1, countRows(t, c.Store.DatabaseURL, "overlap_snapshots"))
}

func TestRunOverlap_Table(t *testing.T) {
	opts := overlapOptions{inputOptions: inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)}}

	var buf bytes.Buffer
	require.NoError(t, runOverlap(context.Background(), testConfig(t), opts, &buf))
	assert.Contains(t, buf.String(), "overlap_people")
	assert.Contains(t, buf.String(), "skipped_records")
	assert.Contains(t, buf.String(), "Bob Stone")
}

func TestRunAccessmap_BuildAndQuery(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)
	dsPath := writeTemp(t, "co.yaml", testDataset)

	var buf bytes.Buffer
	build := buildOptions{
		graphSource:   graphSource{inputOptions: inputOptions{Dataset: dsPath}},
		outputOptions: outputOptions{Format: "json"},
		Persist:       true,
	}
	require.NoError(t, runAccessmapBuild(ctx, c, build, &buf))

	var g accessmap.Graph
	require.NoError(t, json.Unmarshal(buf.Bytes(), &g))
	assert.Equal(t, "co-1", g.CompanyID)
	assert.Equal(t, accessmap.Metrics{Nodes: 14, Edges: 13, Investors: 2, People: 6, Orgs: 5}, g.Metrics())
	assert.Equal(t, model.IngestReport{Investors: 2, Connections: 7}, g.Report)
	assert.Equal(t, 14, countRows(t, c.Store.DatabaseURL, "access_nodes"))
	assert.Equal(t, 13, countRows(t, c.Store.DatabaseURL, "access_edges"))

	// Query the stored map.
	stored := graphSource{Company: "co-1"}

	buf.Reset()
	require.NoError(t, runNeighborhood(ctx, c, neighborhoodOptions{graphSource: stored, outputOptions: outputOptions{Format: "json"}}, "person:bobstone", &buf))
	var nb accessmap.Neighborhood
	require.NoError(t, json.Unmarshal(buf.Bytes(), &nb))
	var keys []string
	for _, n := range nb.Neighbors {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []string{"investor:inv-1", "investor:inv-2", "org:globex"}, keys)

	buf.Reset()
	require.NoError(t, runReach(ctx, c, reachOptions{graphSource: stored, outputOptions: outputOptions{Format: "json"}}, &buf))
	var reach []accessmap.InvestorReach
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reach))
	assert.Equal(t, []accessmap.InvestorReach{
		{InvestorID: "inv-1", Label: "Alice Park", Direct: 3, Exclusive: 2, Orgs: 3, Strength: 4},
		{InvestorID: "inv-2", Label: "Raj Patel", Direct: 4, Exclusive: 3, Orgs: 4, Strength: 5},
	}, reach)
}

func TestRunAccessmap_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no source", func(t *testing.T) {
		err := runReach(ctx, testConfig(t), reachOptions{}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "--dataset or --company")
	})

	t.Run("nothing stored", func(t *testing.T) {
		err := runReach(ctx, testConfig(t), reachOptions{graphSource: graphSource{Company: "co-404"}}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "no stored access map")
	})

	t.Run("unknown node", func(t *testing.T) {
		opts := neighborhoodOptions{graphSource: graphSource{inputOptions: inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)}}}
		err := runNeighborhood(ctx, testConfig(t), opts, "person:nobody", &bytes.Buffer{})
		assert.ErrorContains(t, err, "unknown node")
	})

	t.Run("invalid config", func(t *testing.T) {
		c := testConfig(t)
		c.AccessMap.MaxEdgeWeight = 0.5
		opts := buildOptions{graphSource: graphSource{inputOptions: inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)}}}
		err := runAccessmapBuild(ctx, c, opts, &bytes.Buffer{})
		assert.ErrorContains(t, err, "max_edge_weight")
	})
}

func TestRunAccessmap_BuildTable(t *testing.T) {
	opts := buildOptions{graphSource: graphSource{inputOptions: inputOptions{Dataset: writeTemp(t, "co.yaml", testDataset)}}}

	var buf bytes.Buffer
	require.NoError(t, runAccessmapBuild(context.Background(), testConfig(t), opts, &buf))
	out := buf.String()
	assert.Contains(t, out, "COMPANY_ID")
	assert.Contains(t, out, "investor:inv-1")
	assert.Contains(t, out, "works_at")
}
