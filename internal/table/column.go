package table

import (
	"fmt"
	"math"
	"slices"
)

// Kind is the declared type of a column.
type Kind int

const (
	// Numeric columns hold float64 cells.
	Numeric Kind = iota + 1
	// Categorical columns hold string cells.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Cell is a single value of either kind. Null cells carry no value.
type Cell struct {
	Num  float64
	Str  string
	Null bool
}

// NullCell is the missing value.
var NullCell = Cell{Null: true}

// Column is a named, typed, nullable vector of cells.
type Column struct {
	name string
	kind Kind
	nums []float64
	strs []string
	null []bool
}

// NewNumeric builds a numeric column. NaN values become null cells.
func NewNumeric(name string, values []float64) *Column {
	c := &Column{
		name: name,
		kind: Numeric,
		nums: slices.Clone(values),
		null: make([]bool, len(values)),
	}
	for i, v := range values {
		if math.IsNaN(v) {
			c.null[i] = true
		}
	}
	return c
}

// NewCategorical builds a categorical column with no null cells.
func NewCategorical(name string, values []string) *Column {
	return &Column{
		name: name,
		kind: Categorical,
		strs: slices.Clone(values),
		null: make([]bool, len(values)),
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the declared column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.null) }

// IsNull reports whether cell i is missing.
func (c *Column) IsNull(i int) bool { return c.null[i] }

// Get returns cell i.
func (c *Column) Get(i int) Cell {
	if c.null[i] {
		return NullCell
	}
	if c.kind == Numeric {
		return Cell{Num: c.nums[i]}
	}
	return Cell{Str: c.strs[i]}
}

// Set overwrites cell i. Only the field matching the column kind is used;
// a NaN numeric value is stored as null.
func (c *Column) Set(i int, v Cell) {
	if v.Null {
		c.SetNull(i)
		return
	}
	switch c.kind {
	case Numeric:
		c.SetFloat(i, v.Num)
	case Categorical:
		c.SetString(i, v.Str)
	}
}

// Float returns numeric cell i and whether it is present.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != Numeric || c.null[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Text returns categorical cell i and whether it is present.
func (c *Column) Text(i int) (string, bool) {
	if c.kind != Categorical || c.null[i] {
		return "", false
	}
	return c.strs[i], true
}

// SetFloat stores v in numeric cell i.
func (c *Column) SetFloat(i int, v float64) {
	if math.IsNaN(v) {
		c.SetNull(i)
		return
	}
	c.nums[i] = v
	c.null[i] = false
}

// SetString stores v in categorical cell i.
func (c *Column) SetString(i int, v string) {
	c.strs[i] = v
	c.null[i] = false
}

// SetNull marks cell i missing.
func (c *Column) SetNull(i int) {
	c.null[i] = true
	switch c.kind {
	case Numeric:
		c.nums[i] = math.NaN()
	case Categorical:
		c.strs[i] = ""
	}
}

// Floats returns the present values of a numeric column in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.null[i] {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

// Ranking returns the distinct present values ordered by descending
// frequency, ties broken by first appearance.
func (c *Column) Ranking() []Cell {
	type entry struct {
		cell  Cell
		count int
		first int
	}
	seen := make(map[Cell]int)
	var entries []entry
	for i := 0; i < c.Len(); i++ {
		cell := c.Get(i)
		if cell.Null {
			continue
		}
		if j, ok := seen[cell]; ok {
			entries[j].count++
			continue
		}
		seen[cell] = len(entries)
		entries = append(entries, entry{cell: cell, count: 1, first: i})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return a.first - b.first
	})

	out := make([]Cell, len(entries))
	for i, e := range entries {
		out[i] = e.cell
	}
	return out
}

// Mode returns the most frequent present value.
func (c *Column) Mode() (Cell, bool) {
	ranking := c.Ranking()
	if len(ranking) == 0 {
		return Cell{}, false
	}
	return ranking[0], true
}

func (c *Column) clone() *Column {
	return &Column{
		name: c.name,
		kind: c.kind,
		nums: slices.Clone(c.nums),
		strs: slices.Clone(c.strs),
		null: slices.Clone(c.null),
	}
}

func (c *Column) take(positions []int) *Column {
	out := &Column{name: c.name, kind: c.kind, null: make([]bool, len(positions))}
	switch c.kind {
	case Numeric:
		out.nums = make([]float64, len(positions))
	case Categorical:
		out.strs = make([]string, len(positions))
	}
	for i, p := range positions {
		out.null[i] = c.null[p]
		switch c.kind {
		case Numeric:
			out.nums[i] = c.nums[p]
		case Categorical:
			out.strs[i] = c.strs[p]
		}
	}
	return out
}

func (c *Column) appendFrom(other *Column) {
	c.nums = append(c.nums, other.nums...)
	c.strs = append(c.strs, other.strs...)
	c.null = append(c.null, other.null...)
}
