package sheet

import (
	"fmt"
	"strings"
)

// Value is one cell of a row. A cell that is missing or blank is absent.
type Value struct {
	Text    string
	Present bool
}

// Text returns a present value holding s, or an absent one when s is blank
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{}
	}
	return Value{Text: s, Present: true}
}

// Absent is the empty value
var Absent = Value{}

// Row maps column names to cell values
type Row map[string]Value

// Get returns the value for column, Absent when the row has no such cell
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Absent
}

// Table is a sheet loaded into memory: a header of unique column names and
// the data rows below it, in sheet order
type Table struct {
	Sheet   string
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// newTable builds a Table from raw rows, the first one being the header
func newTable(sheetName string, raw [][]string) *Table {
	t := &Table{Sheet: sheetName}
	if len(raw) == 0 {
		return t
	}

	// Drop blank rows at the end of the sheet
	end := len(raw)
	for end > 1 && isBlank(raw[end-1]) {
		end--
	}
	raw = raw[:end]

	t.Columns = headerNames(raw, width(raw))

	for _, cells := range raw[1:] {
		row := make(Row, len(t.Columns))
		for j, column := range t.Columns {
			if j < len(cells) {
				row[column] = Text(cells[j])
			} else {
				row[column] = Absent
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// headerNames returns unique column names from the header row. Blank headers
// become "Unnamed: <i>" and repeats get ".1", ".2", ... suffixes.
func headerNames(raw [][]string, n int) []string {
	header := raw[0]
	names := make([]string, n)
	seen := make(map[string]int, n)

	for i := 0; i < n; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}

// width returns the widest row length
func width(raw [][]string) int {
	n := 0
	for _, r := range raw {
		// Trailing blank cells do not widen the table
		l := len(r)
		for l > 0 && strings.TrimSpace(r[l-1]) == "" {
			l--
		}
		if l > n {
			n = l
		}
	}
	return n
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
