package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/etomlinson-dev/KYI/internal/model"
)

// headerScanRows bounds how far into a file the header row is searched.
// LinkedIn exports start with a few lines of notes.
const headerScanRows = 10

// Column aliases, matched after lowercasing and removing spaces, dashes
// and underscores.
var columnAliases = map[string][]string{
	"name":     {"name", "fullname", "displayname"},
	"first":    {"firstname", "first", "givenname"},
	"last":     {"lastname", "last", "surname", "familyname"},
	"company":  {"company", "organization", "org", "employer", "currentcompany"},
	"title":    {"position", "title", "jobtitle", "headline", "job", "role"},
	"location": {"location", "geo", "region", "city", "country"},
	"url":      {"url", "profileurl", "linkedinurl", "linkedin", "profile"},
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// columns maps a field to its column index.
type columns map[string]int

// parseHeader returns the column layout, or false when the row holds no
// name column.
func parseHeader(row []string) (columns, bool) {
	byName := make(map[string]int, len(row))
	for i, h := range row {
		if _, dup := byName[normalizeHeader(h)]; !dup {
			byName[normalizeHeader(h)] = i
		}
	}
	cols := columns{}
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				cols[field] = i
				break
			}
		}
	}
	_, hasName := cols["name"]
	_, hasFirst := cols["first"]
	return cols, hasName || hasFirst
}

func (c columns) get(row []string, field string) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) connection(row []string, investorID string) model.Connection {
	name := c.get(row, "name")
	if name == "" {
		name = strings.TrimSpace(c.get(row, "first") + " " + c.get(row, "last"))
	}
	return model.Connection{
		Name:       name,
		Title:      c.get(row, "title"),
		Company:    c.get(row, "company"),
		Location:   c.get(row, "location"),
		ExternalID: c.get(row, "url"),
		InvestorID: investorID,
	}
}

// fromRows converts raw rows into connections. Rows before the header and
// rows without a name are skipped.
func fromRows(rows [][]string, investorID string) ([]model.Connection, error) {
	var (
		cols  columns
		found bool
		start int
	)
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if cols, found = parseHeader(rows[i]); found {
			start = i + 1
			break
		}
	}
	if !found {
		return nil, eris.New("dataset: no header row with a name column")
	}

	out := []model.Connection{}
	for _, row := range rows[start:] {
		c := cols.connection(row, investorID)
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadConnectionsCSV parses a connections export such as LinkedIn's
// Connections.csv.
func ReadConnectionsCSV(ctx context.Context, r io.Reader, investorID string) ([]model.Connection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // notes and data rows differ in width
	reader.LazyQuotes = true

	var rows [][]string
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "dataset: csv context cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "dataset: csv read row")
		}
		rows = append(rows, record)
	}
	return fromRows(rows, investorID)
}

// ReadConnectionsXLSX parses the first sheet of a spreadsheet export.
func ReadConnectionsXLSX(path, investorID string) ([]model.Connection, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: xlsx open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("dataset: xlsx has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return fromRows(rows, investorID)
}
