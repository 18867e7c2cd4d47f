package corrupt

// Default option values.
const (
	DefaultColumnFraction     = 0.2
	DefaultCategoricalMissing = "UNKNOWN"
	DefaultNumericMissing     = -1.0
	DefaultNoiseScaleMin      = 1.0
	DefaultNoiseScaleMax      = 5.0
)

// Options tune individual strategies.
type Options struct {
	// CategoricalMissing replaces categorical cells for Placeholder.
	CategoricalMissing string
	// NumericMissing replaces numeric cells for Placeholder and NearDuplicateRow.
	NumericMissing float64
	// NoiseScaleMin and NoiseScaleMax bound the per-column GaussianNoise scale factor.
	NoiseScaleMin float64
	NoiseScaleMax float64
}

// DefaultOptions returns the stock option values.
func DefaultOptions() Options {
	return Options{
		CategoricalMissing: DefaultCategoricalMissing,
		NumericMissing:     DefaultNumericMissing,
		NoiseScaleMin:      DefaultNoiseScaleMin,
		NoiseScaleMax:      DefaultNoiseScaleMax,
	}
}

// Spec sizes a corruption: the share of rows and of eligible columns to touch.
type Spec struct {
	RowFraction    float64
	ColumnFraction float64
	Options        Options
}

// NewSpec validates the fractions and returns a Spec with default options.
func NewSpec(rowFraction, columnFraction float64) (Spec, error) {
	s := Spec{RowFraction: rowFraction, ColumnFraction: columnFraction, Options: DefaultOptions()}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// WithOptions returns a copy of s using opts.
func (s Spec) WithOptions(opts Options) Spec {
	s.Options = opts
	return s
}

// Validate checks the fraction ranges and option consistency.
func (s Spec) Validate() error {
	// !(x >= 0 && x <= 1) also rejects NaN
	if !(s.RowFraction >= 0 && s.RowFraction <= 1) {
		return newConfigError(ErrCodeRowFraction, "row fraction must be in [0, 1], got %v", s.RowFraction)
	}
	if !(s.ColumnFraction >= 0 && s.ColumnFraction <= 1) {
		return newConfigError(ErrCodeColumnFraction, "column fraction must be in [0, 1], got %v", s.ColumnFraction)
	}
	if s.Options.NoiseScaleMin > s.Options.NoiseScaleMax {
		return newConfigError(ErrCodeOptions, "noise scale min %v exceeds max %v",
			s.Options.NoiseScaleMin, s.Options.NoiseScaleMax)
	}
	return nil
}
