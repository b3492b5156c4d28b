// Package tabular provides the in-memory table model and CSV loading used
// to turn stored datasets into bounded plain-text context.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
)

// ErrParse indicates the raw bytes could not be parsed as a table.
var ErrParse = errors.New("parse error")

// Table is a parsed tabular dataset: a header row plus data rows.
// All cells are strings; filtering compares textual equality.
type Table struct {
	Header []string
	Rows   [][]string
}

// Loader parses raw bytes into a Table.
// The production implementation is CSVLoader; tests substitute fakes.
type Loader interface {
	Load(data []byte) (Table, error)
}

// CSVLoader parses comma-separated values with a mandatory header row.
type CSVLoader struct{}

// Load parses data as CSV. The first record is the header.
// Ragged records are rejected by the csv reader and reported as ErrParse.
func (CSVLoader) Load(data []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("%w: no header row", ErrParse)
	}

	return Table{Header: records[0], Rows: records[1:]}, nil
}

// Project returns a table containing only the named columns, in the given
// order. Columns absent from the header are skipped; projecting onto no
// known column returns the table unchanged rather than an empty one.
func (t Table) Project(columns []string) Table {
	var idx []int
	var header []string
	for _, col := range columns {
		if i := slices.Index(t.Header, col); i >= 0 {
			idx = append(idx, i)
			header = append(header, col)
		}
	}
	if len(idx) == 0 {
		return t
	}

	rows := make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		projected := make([]string, len(idx))
		for pi, ci := range idx {
			if ci < len(row) {
				projected[pi] = row[ci]
			}
		}
		rows[ri] = projected
	}
	return Table{Header: header, Rows: rows}
}

// FilterEq keeps only the rows whose value in the named column equals value.
// If the column does not exist, the table is returned unchanged — the
// filter is best-effort and must not erase unrelated data.
func (t Table) FilterEq(column, value string) Table {
	ci := slices.Index(t.Header, column)
	if ci < 0 {
		return t
	}

	var rows [][]string
	for _, row := range t.Rows {
		if ci < len(row) && strings.TrimSpace(row[ci]) == value {
			rows = append(rows, row)
		}
	}
	return Table{Header: t.Header, Rows: rows}
}

// HasColumn reports whether the header contains the named column.
func (t Table) HasColumn(column string) bool {
	return slices.Contains(t.Header, column)
}

// Head returns a table with at most n leading rows.
func (t Table) Head(n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return Table{Header: t.Header, Rows: t.Rows[:n]}
}

// Render serializes the table as aligned plain text, one line per row.
func (t Table) Render() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	// Flush on a bytes.Buffer cannot fail.
	_ = w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
