package corrupt

import (
	"slices"

	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// nearDuplicate keeps an untouched copy of every selected row, perturbs the
// originals (a typo in categorical cells, the numeric placeholder in numeric
// cells), appends the copies and shuffles. The rows reported are the
// perturbed rows under their new keys.
type nearDuplicate struct {
	pooled
	opts Options
}

func (n *nearDuplicate) apply(rc *repro.Context, t *table.Table, rows []int64, cols []string) (*table.Table, []int64, error) {
	positions, err := positionsOf(t, rows)
	if err != nil {
		return nil, nil, err
	}
	held := t.Take(positions)

	for _, name := range cols {
		col, err := mustColumn(t, name)
		if err != nil {
			return nil, nil, err
		}
		switch col.Kind() {
		case table.Categorical:
			if err := applyTypos(rc, col, positions); err != nil {
				return nil, nil, err
			}
		case table.Numeric:
			for _, p := range positions {
				setImplicitMissing(col, p, n.opts)
			}
		}
	}

	if err := t.Append(held); err != nil {
		return nil, nil, err
	}
	shuffled, order, err := repro.ShuffleReindex(rc, t)
	if err != nil {
		return nil, nil, err
	}

	moved := make(map[int]int64, len(order))
	for newPos, oldPos := range order {
		moved[oldPos] = int64(newPos)
	}
	affected := make([]int64, len(positions))
	for i, p := range positions {
		affected[i] = moved[p]
	}
	slices.Sort(affected)
	return shuffled, affected, nil
}

// applyTypos gives each distinct value of col one typo variant and rewrites
// the cells at positions with it.
func applyTypos(rc *repro.Context, col *table.Column, positions []int) error {
	variants := make(map[string]string)
	for _, cell := range col.Ranking() {
		v, err := typo(rc, cell.Str)
		if err != nil {
			return err
		}
		variants[cell.Str] = v
	}
	for _, p := range positions {
		if s, ok := col.Text(p); ok {
			col.SetString(p, variants[s])
		}
	}
	return nil
}

type typoKind int

const (
	typoExtraLetter typoKind = iota
	typoMissingLetter
	typoSwappedLetters
)

// typo introduces one single-character error: a doubled letter, a dropped
// letter or two adjacent letters swapped.
func typo(rc *repro.Context, s string) (string, error) {
	r := []rune(s)
	kinds := []typoKind{typoExtraLetter, typoMissingLetter, typoSwappedLetters}
	switch len(r) {
	case 0:
		return s, nil
	case 1:
		kinds = kinds[:2]
	}

	picked, err := repro.SampleFrom(rc, kinds, 1)
	if err != nil {
		return "", err
	}

	last := len(r)
	if picked[0] == typoSwappedLetters {
		last = len(r) - 1
	}
	at, err := repro.SampleFrom(rc, indices(last), 1)
	if err != nil {
		return "", err
	}
	i := at[0]

	switch picked[0] {
	case typoExtraLetter:
		r = slices.Insert(r, i, r[i])
	case typoMissingLetter:
		r = slices.Delete(r, i, i+1)
	case typoSwappedLetters:
		r[i], r[i+1] = r[i+1], r[i]
	}
	return string(r), nil
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
