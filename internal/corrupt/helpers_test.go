package corrupt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// mixedTable builds n rows with a numeric "amount" column (0..n-1) and a
// categorical "segment" column cycling through four values. "segment" is the target.
func mixedTable(t *testing.T, n int) *table.Table {
	t.Helper()
	amounts := make([]float64, n)
	segments := make([]string, n)
	labels := []string{"retail", "wholesale", "online", "partner"}
	for i := 0; i < n; i++ {
		amounts[i] = float64(i)
		segments[i] = labels[i%len(labels)]
	}
	tbl, err := table.New(
		table.NewNumeric("amount", amounts),
		table.NewCategorical("segment", segments),
	)
	require.NoError(t, err)
	require.NoError(t, tbl.SetTarget("segment"))
	return tbl
}

func smallTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NewNumeric("qty", []float64{3, 1, 4, 1, 5}),
		table.NewCategorical("store", []string{"north", "south", "north", "east", "north"}),
	)
	require.NoError(t, err)
	return tbl
}

func mustCorruptor(t *testing.T, kind Kind, rows, cols float64) *Corruptor {
	t.Helper()
	spec, err := NewSpec(rows, cols)
	require.NoError(t, err)
	c, err := New(kind, spec)
	require.NoError(t, err)
	return c
}

func fingerprint(t *testing.T, tbl *table.Table) string {
	t.Helper()
	fp, err := tbl.Fingerprint()
	require.NoError(t, err)
	return fp
}

// changedRows returns the keys of rows whose cell in column name differs
// between before and after. Both tables must share row keys.
func changedRows(t *testing.T, before, after *table.Table, name string) []int64 {
	t.Helper()
	b, ok := before.Column(name)
	require.True(t, ok)
	a, ok := after.Column(name)
	require.True(t, ok)

	var keys []int64
	index := after.Index()
	for i := 0; i < after.Len(); i++ {
		if fmt.Sprint(a.Get(i)) != fmt.Sprint(b.Get(i)) {
			keys = append(keys, index[i])
		}
	}
	return keys
}

func seeded(seed int64) *repro.Context {
	return repro.NewSeeded(seed)
}
