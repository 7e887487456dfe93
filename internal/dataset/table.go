package dataset

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind describes how a column stores its values.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

var (
	// ErrLengthMismatch is returned when a column does not have exactly Rows values.
	ErrLengthMismatch = errors.New("dataset: column length does not match row count")
	// ErrDuplicateColumn is returned when a column name is already present.
	ErrDuplicateColumn = errors.New("dataset: duplicate column name")
)

// Column is a named, nullable sequence of values. Exactly one of Text or
// Numbers is populated depending on Kind. Null is nil until missingness is
// injected; a nil Null slice means no cell is missing.
type Column struct {
	Name    string
	Kind    Kind
	Text    []string
	Numbers []float64
	Null    []bool
}

// NewTextColumn builds a text column over values (not copied).
func NewTextColumn(name string, values []string) Column {
	return Column{Name: name, Kind: KindText, Text: values}
}

// NewNumericColumn builds a numeric column over values (not copied).
func NewNumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Numbers: values}
}

// Len returns the number of cells in the column.
func (c Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Numbers)
	}
	return len(c.Text)
}

// IsNull reports whether row i is missing.
func (c Column) IsNull(i int) bool {
	return c.Null != nil && c.Null[i]
}

// SetNull marks row i as missing, allocating the null mask on first use.
func (c *Column) SetNull(i int) {
	if c.Null == nil {
		c.Null = make([]bool, c.Len())
	}
	c.Null[i] = true
}

// Format renders row i as text. Missing cells render as "".
func (c Column) Format(i int) string {
	if c.IsNull(i) {
		return ""
	}
	if c.Kind == KindNumeric {
		return strconv.FormatFloat(c.Numbers[i], 'g', -1, 64)
	}
	return c.Text[i]
}

// MissingCount returns the number of null cells in the column.
func (c Column) MissingCount() int {
	n := 0
	for _, null := range c.Null {
		if null {
			n++
		}
	}
	return n
}

// Table is a row-aligned set of named columns.
type Table struct {
	Rows    int
	Columns []Column
}

// New returns an empty table that accepts columns of length rows.
func New(rows int) *Table {
	return &Table{Rows: rows}
}

// Append adds columns at the end, preserving order.
func (t *Table) Append(cols ...Column) error {
	for _, c := range cols {
		if c.Len() != t.Rows {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrLengthMismatch, c.Name, c.Len(), t.Rows)
		}
		if t.index(c.Name) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, c.Name)
		}
		t.Columns = append(t.Columns, c)
	}
	return nil
}

func (t *Table) index(name string) int {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	i := t.index(name)
	if i < 0 {
		return nil, false
	}
	return &t.Columns[i], true
}

// Names returns column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) {
	return t.Rows, len(t.Columns)
}

// MissingCount returns the total number of null cells.
func (t *Table) MissingCount() int {
	n := 0
	for _, c := range t.Columns {
		n += c.MissingCount()
	}
	return n
}

// Record renders row i as one string per column.
func (t *Table) Record(i int) []string {
	rec := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		rec[j] = c.Format(i)
	}
	return rec
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{Rows: t.Rows, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cc := Column{Name: c.Name, Kind: c.Kind}
		if c.Text != nil {
			cc.Text = append([]string(nil), c.Text...)
		}
		if c.Numbers != nil {
			cc.Numbers = append([]float64(nil), c.Numbers...)
		}
		if c.Null != nil {
			cc.Null = append([]bool(nil), c.Null...)
		}
		out.Columns[i] = cc
	}
	return out
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n > t.Rows {
		n = t.Rows
	}
	if n < 0 {
		n = 0
	}
	out := &Table{Rows: n, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cc := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindNumeric {
			cc.Numbers = append([]float64(nil), c.Numbers[:n]...)
		} else {
			cc.Text = append([]string(nil), c.Text[:n]...)
		}
		if c.Null != nil {
			cc.Null = append([]bool(nil), c.Null[:n]...)
		}
		out.Columns[i] = cc
	}
	return out
}
