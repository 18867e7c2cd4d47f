package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/synq/internal/canon"
)

// Fingerprint returns a content hash over row keys, target, column schema
// and every cell. Two tables share a fingerprint only if they are
// byte-identical in all of these.
func (t *Table) Fingerprint() (string, error) {
	cols := make(canon.Array, len(t.cols))
	for i, c := range t.cols {
		cells := make(canon.Array, c.Len())
		for r := 0; r < c.Len(); r++ {
			cells[r] = cellValue(c.kind, c.Get(r))
		}
		cols[i] = canon.Object{
			"name":  canon.String(c.name),
			"kind":  canon.String(c.kind.String()),
			"cells": cells,
		}
	}

	return canon.HashValue(canon.DomainTable, canon.Object{
		"index":   canon.Ints(t.index),
		"target":  canon.String(t.target),
		"columns": cols,
	})
}

// cellValue encodes null as an empty array and a present value as a
// one-element array, since canonical JSON has no null.
func cellValue(k Kind, c Cell) canon.Value {
	switch {
	case c.Null:
		return canon.Array{}
	case k == Categorical:
		return canon.Array{canon.String(c.Str)}
	default:
		return canon.Array{canon.Float64Bits(c.Num)}
	}
}

// WriteCSV writes a header row and one record per row. Null cells are
// written as empty fields; row keys are not written.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}

	record := make([]string, len(t.cols))
	for r := 0; r < t.Len(); r++ {
		for i, c := range t.cols {
			record[i] = formatCell(c, r)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("table: write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(c *Column, r int) string {
	if c.IsNull(r) {
		return ""
	}
	if v, ok := c.Float(r); ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s, _ := c.Text(r)
	return s
}
