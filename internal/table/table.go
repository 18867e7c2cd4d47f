package table

import (
	"fmt"
	"slices"
)

// Table is an ordered set of equal-length columns with row keys.
type Table struct {
	cols   []*Column
	byName map[string]int
	index  []int64
	target string
}

// New builds a table from columns and assigns row keys 0..n-1.
// Column names must be unique and all columns must have the same length.
func New(cols ...*Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(cols))}
	n := -1
	for _, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("table: nil column")
		}
		if _, dup := t.byName[c.name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", c.name)
		}
		if n >= 0 && c.Len() != n {
			return nil, fmt.Errorf("table: column %q has %d rows, want %d", c.name, c.Len(), n)
		}
		n = c.Len()
		t.byName[c.name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	if n < 0 {
		n = 0
	}
	t.index = make([]int64, n)
	for i := range t.index {
		t.index[i] = int64(i)
	}
	return t, nil
}

// MustNew is New that panics on error. For tests and literals.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// SetTarget designates an existing column as the prediction target.
// An empty name clears the target.
func (t *Table) SetTarget(name string) error {
	if name != "" {
		if _, ok := t.byName[name]; !ok {
			return fmt.Errorf("table: target column %q not found", name)
		}
	}
	t.target = name
	return nil
}

// Target returns the target column name, or "" if none is designated.
func (t *Table) Target() string { return t.target }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column { return slices.Clone(t.cols) }

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// NumericColumns returns the names of numeric columns in declaration order.
func (t *Table) NumericColumns() []string { return t.namesOfKind(Numeric) }

// CategoricalColumns returns the names of categorical columns in declaration order.
func (t *Table) CategoricalColumns() []string { return t.namesOfKind(Categorical) }

func (t *Table) namesOfKind(k Kind) []string {
	var names []string
	for _, c := range t.cols {
		if c.kind == k {
			names = append(names, c.name)
		}
	}
	return names
}

// Index returns a copy of the row keys.
func (t *Table) Index() []int64 { return slices.Clone(t.index) }

// Positions maps row keys to row positions. The first row carrying a key wins.
func (t *Table) Positions(keys []int64) ([]int, error) {
	lookup := make(map[int64]int, len(t.index))
	for i := len(t.index) - 1; i >= 0; i-- {
		lookup[t.index[i]] = i
	}
	out := make([]int, len(keys))
	for i, k := range keys {
		p, ok := lookup[k]
		if !ok {
			return nil, fmt.Errorf("table: row key %d not found", k)
		}
		out[i] = p
	}
	return out, nil
}

// Clone returns a deep copy. Mutating the copy never affects t.
func (t *Table) Clone() *Table {
	out := &Table{
		cols:   make([]*Column, len(t.cols)),
		byName: make(map[string]int, len(t.byName)),
		index:  slices.Clone(t.index),
		target: t.target,
	}
	for i, c := range t.cols {
		out.cols[i] = c.clone()
		out.byName[c.name] = i
	}
	return out
}

// Take returns a copy holding the rows at positions, keeping their keys.
func (t *Table) Take(positions []int) *Table {
	out := &Table{
		cols:   make([]*Column, len(t.cols)),
		byName: make(map[string]int, len(t.byName)),
		index:  make([]int64, len(positions)),
		target: t.target,
	}
	for i, p := range positions {
		out.index[i] = t.index[p]
	}
	for i, c := range t.cols {
		out.cols[i] = c.take(positions)
		out.byName[c.name] = i
	}
	return out
}

// Reorder returns a copy whose row i is row order[i] of t, with a fresh
// 0..n-1 index.
func (t *Table) Reorder(order []int) *Table {
	out := t.Take(order)
	for i := range out.index {
		out.index[i] = int64(i)
	}
	return out
}

// Append adds the rows of other to t in place, keeping other's row keys.
// Both tables must have the same columns in the same order.
func (t *Table) Append(other *Table) error {
	if len(other.cols) != len(t.cols) {
		return fmt.Errorf("table: append: %d columns, want %d", len(other.cols), len(t.cols))
	}
	for i, c := range t.cols {
		o := other.cols[i]
		if o.name != c.name || o.kind != c.kind {
			return fmt.Errorf("table: append: column %d is %s %q, want %s %q", i, o.kind, o.name, c.kind, c.name)
		}
	}
	for i, c := range t.cols {
		c.appendFrom(other.cols[i])
	}
	t.index = append(t.index, other.index...)
	return nil
}
