// Package export assembles per-document answers into a report and renders it as a spreadsheet.
package export

import (
	"github.com/joseph-ayodele/pdf-data-extractor/constants"
)

// Row maps a column name to its cell value for one document.
type Row map[string]string

// Report is the ordered set of rows for one run. Columns are kept in first-seen order and
// always start with the filename column.
type Report struct {
	columns []string
	seen    map[string]struct{}
	rows    []Row
}

// NewReport returns an empty report whose header is "Filename" followed by titles.
func NewReport(titles ...string) *Report {
	r := &Report{seen: map[string]struct{}{}}
	r.addColumn(constants.FilenameColumn)
	for _, t := range titles {
		r.addColumn(t)
	}
	return r
}

func (r *Report) addColumn(name string) {
	if _, ok := r.seen[name]; ok {
		return
	}
	r.seen[name] = struct{}{}
	r.columns = append(r.columns, name)
}

// Add appends one row. Answers are paired with titles by position; when the counts differ
// the extra titles or answers are left out.
func (r *Report) Add(filename string, titles, answers []string) Row {
	row := Row{constants.FilenameColumn: filename}
	n := min(len(titles), len(answers))
	for i := 0; i < n; i++ {
		r.addColumn(titles[i])
		row[titles[i]] = answers[i]
	}
	r.rows = append(r.rows, row)
	return row
}

// Append copies the rows of other onto r, adding any new columns.
func (r *Report) Append(other *Report) {
	for _, c := range other.columns {
		r.addColumn(c)
	}
	for _, row := range other.rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		r.rows = append(r.rows, cp)
	}
}

// Columns returns the header in first-seen order.
func (r *Report) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Rows returns the rows in insertion order.
func (r *Report) Rows() []Row {
	return append([]Row(nil), r.rows...)
}

func (r *Report) Len() int {
	return len(r.rows)
}

// Values returns row i laid out in column order, blank where the row has no value.
func (r *Report) Values(i int) []string {
	out := make([]string, len(r.columns))
	for c, name := range r.columns {
		out[c] = r.rows[i][name]
	}
	return out
}
