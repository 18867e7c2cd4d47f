package corrupt

import "fmt"

// Kind is the closed set of corruption strategies.
type Kind int

const (
	GaussianNoise Kind = iota + 1
	CategoricalShift
	LabelError
	Placeholder
	ExplicitMissingValue
	NearDuplicateRow
	SkewedForeignKey
	OrphanedForeignKey
	ClassImbalance
	TyposSwappedLetters
)

var kindNames = map[Kind]string{
	GaussianNoise:        "gaussian_noise",
	CategoricalShift:     "categorical_shift",
	LabelError:           "label_error",
	Placeholder:          "placeholder",
	ExplicitMissingValue: "missing_value",
	NearDuplicateRow:     "near_duplicate",
	SkewedForeignKey:     "skewed_fk",
	OrphanedForeignKey:   "orphaned_fk",
	ClassImbalance:       "class_imbalance",
	TyposSwappedLetters:  "typos_swapped_letters",
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		GaussianNoise, CategoricalShift, LabelError, Placeholder, ExplicitMissingValue,
		NearDuplicateRow, SkewedForeignKey, OrphanedForeignKey, ClassImbalance, TyposSwappedLetters,
	}
}

// String returns the short name used in identities and plans.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Implemented reports whether New can build a Corruptor for k.
func (k Kind) Implemented() bool {
	switch k {
	case ClassImbalance, TyposSwappedLetters:
		return false
	}
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a short name produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown corruption kind %q", s)
}
