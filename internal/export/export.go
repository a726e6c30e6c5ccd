// Package export renders results as text tables, CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Format is an output encoding.
type Format string

// Output formats. JSON is handled by callers.
const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// Table is a header plus string rows. Numeric cells are tracked so XLSX
// output can store them as numbers.
type Table struct {
	Name    string
	Header  []string
	Rows    [][]string
	numeric map[int]bool
}

// NewTable creates a table. numericCols are column indexes holding numbers.
func NewTable(name string, header []string, numericCols ...int) *Table {
	t := &Table{Name: name, Header: header, Rows: [][]string{}, numeric: map[int]bool{}}
	for _, c := range numericCols {
		t.numeric[c] = true
	}
	return t
}

// Add appends a row.
func (t *Table) Add(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Write renders t in format f. JSON is not a table format.
func (t *Table) Write(w io.Writer, f Format) error {
	return Write(w, f, t)
}

// Write renders tables in format f. Text and CSV tables are separated by a
// blank line; XLSX puts each table on its own sheet.
func Write(w io.Writer, f Format, tables ...*Table) error {
	switch f {
	case FormatTable, FormatCSV:
		for i, t := range tables {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return eris.Wrap(err, "export: write separator")
				}
			}
			var err error
			if f == FormatTable {
				err = t.WriteText(w)
			} else {
				err = t.WriteCSV(w)
			}
			if err != nil {
				return err
			}
		}
		return nil
	case FormatXLSX:
		return WriteXLSX(w, tables...)
	default:
		return eris.Errorf("export: %s is not a table format", f)
	}
}

// WriteText writes an aligned text table.
func (t *Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(upper(t.Header), "\t"))
	_, _ = fmt.Fprintln(tw, strings.Join(rule(t.Header), "\t"))
	for _, r := range t.Rows {
		_, _ = fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return eris.Wrap(tw.Flush(), "export: flush table")
}

// WriteCSV writes t as CSV with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return eris.Wrap(err, "export: write csv rows")
	}
	return nil
}

// WriteXLSX writes t as a single-sheet workbook.
func (t *Table) WriteXLSX(w io.Writer) error {
	return WriteXLSX(w, t)
}

// WriteXLSX writes a workbook with one sheet per table.
func WriteXLSX(w io.Writer, tables ...*Table) error {
	f := xlsx.NewFile()
	for i, t := range tables {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		sheet, err := f.AddSheet(name)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", name)
		}
		t.fill(sheet)
	}
	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func (t *Table) fill(sheet *xlsx.Sheet) {
	header := sheet.AddRow()
	for _, h := range t.Header {
		header.AddCell().SetString(h)
	}
	for _, r := range t.Rows {
		row := sheet.AddRow()
		for i, v := range r {
			cell := row.AddCell()
			if t.numeric[i] {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cell.SetFloat(n)
					continue
				}
			}
			cell.SetString(v)
		}
	}
}

func upper(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func rule(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.Repeat("-", len(s))
	}
	return out
}
