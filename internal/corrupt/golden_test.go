package corrupt

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// Full-coverage corruptions touch every row and column, so their output is
// independent of the sampled order and can be pinned as golden CSV.
//
// To regenerate golden files, run:
//
//	go test ./internal/corrupt -update
func TestCorrupt_Golden(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		rows float64
	}{
		{"placeholder_all", Placeholder, 1},
		{"missing_value_all", ExplicitMissingValue, 1},
		{"orphaned_fk_all", OrphanedForeignKey, 1},
		{"skewed_fk_all", SkewedForeignKey, 0},
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCorruptor(t, tt.kind, tt.rows, 1)
			res, err := c.Corrupt(seeded(2024), smallTable(t))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, res.Table.WriteCSV(&buf))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}
