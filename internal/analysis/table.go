package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Options controls how raw cells are interpreted when a table is built.
type Options struct {
	// Numeric parsing locale. If DecimalSeparator is 0, only the plain Go float
	// grammar is accepted ("1234.5", "-3", "1e6").
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns the options used for dashboard datasets.
func DefaultOptions() Options {
	return Options{}
}

// nullTokens are cell values treated as missing.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

// IsNull reports whether a raw cell is a missing value.
func IsNull(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

// Column is one named, typed column of a Table.
type Column struct {
	Name string
	Kind Kind

	raw   []string
	nums  []float64 // NaN where null; only populated for numeric columns
	valid []bool
}

// Len returns the number of rows in the column, nulls included.
func (c *Column) Len() int { return len(c.raw) }

// IsNumeric reports whether the column holds numeric values.
func (c *Column) IsNumeric() bool { return c.Kind == KindNumeric }

// Value returns the raw cell at row i and whether it is non-null.
func (c *Column) Value(i int) (string, bool) {
	if i < 0 || i >= len(c.raw) {
		return "", false
	}
	return c.raw[i], c.valid[i]
}

// Values returns the non-null raw values in row order.
func (c *Column) Values() []string {
	out := make([]string, 0, len(c.raw))
	for i, v := range c.raw {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Floats returns the non-null numeric values in row order. Nil for categorical columns.
func (c *Column) Floats() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Table is an immutable, ordered collection of named columns.
type Table struct {
	Name    string
	Columns []*Column

	index map[string]int
	rows  int
}

// NewTable builds a Table from a header row and data rows. Short rows are padded
// with nulls, extra cells beyond the header are dropped.
func NewTable(name string, header []string, rows [][]string, opt Options) *Table {
	names := normalizeHeader(header)
	t := &Table{Name: name, index: make(map[string]int, len(names)), rows: len(rows)}
	for j, n := range names {
		c := &Column{Name: n, raw: make([]string, len(rows)), valid: make([]bool, len(rows))}
		for i, rec := range rows {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			c.raw[i] = v
			c.valid[i] = !IsNull(v)
		}
		inferKind(c, opt)
		t.index[n] = j
		t.Columns = append(t.Columns, c)
	}
	return t
}

func inferKind(c *Column, opt Options) {
	nums := make([]float64, len(c.raw))
	for i, v := range c.raw {
		if !c.valid[i] {
			nums[i] = math.NaN()
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			c.Kind = KindCategorical
			return
		}
		nums[i] = x
	}
	// An all-null column stays numeric, matching dataframe float inference.
	c.Kind = KindNumeric
	c.nums = nums
}

// normalizeHeader fills blank names and de-duplicates repeats as x, x.1, x.2.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if k, dup := seen[n]; dup {
			for {
				k++
				cand := fmt.Sprintf("%s.%d", n, k)
				if _, taken := seen[cand]; !taken {
					seen[n] = k
					n = cand
					break
				}
			}
		}
		seen[n] = 0
		out[i] = n
	}
	return out
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// ColumnNames returns column names in file order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// NumericColumns returns the names of numeric columns in file order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.IsNumeric() {
			out = append(out, c.Name)
		}
	}
	return out
}

// Row returns the raw cells of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		out[j], _ = c.Value(i)
	}
	return out
}

// Head returns up to n leading rows.
func (t *Table) Head(n int) [][]string {
	if n > t.rows {
		n = t.rows
	}
	out := make([][]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, t.Row(i))
	}
	return out
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	if opt.ThousandsSeparator != 0 && opt.ThousandsSeparator != opt.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(opt.ThousandsSeparator), "")
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(opt.DecimalSeparator), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
