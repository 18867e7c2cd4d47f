package plan

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/identity"
)

//go:embed schema.cue
var schemaCUE string

// Plan is a validated sweep plan.
type Plan struct {
	Experiment     identity.ExperimentKind
	Seeds          []int64
	Datasets       []string
	Generators     []identity.Generator
	ErrorKinds     []corrupt.Kind
	ErrorRates     []float64
	Perfectness    []identity.Perfectness
	ColumnFraction float64
	Evaluations    []identity.Evaluation
}

// Error reports an invalid plan, with the CUE position when known.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type rawPlan struct {
	Experiment     string          `json:"experiment"`
	Seeds          []int64         `json:"seeds"`
	Datasets       []string        `json:"datasets"`
	Generators     []string        `json:"generators"`
	ErrorKinds     []string        `json:"error_kinds"`
	ErrorRates     []float64       `json:"error_rates"`
	Perfectness    []string        `json:"perfectness"`
	ColumnFraction float64         `json:"column_fraction"`
	Evaluations    []rawEvaluation `json:"evaluations"`
}

type rawEvaluation struct {
	Method  string   `json:"method"`
	Targets []string `json:"targets"`
}

// Load reads a plan from a .cue file, or from the CUE package in a
// directory.
func Load(path string) (*Plan, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}

	ctx := cuecontext.New()
	var v cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, &Error{Field: "plan", Message: "no CUE instances loaded"}
		}
		if err := instances[0].Err; err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load plan: %w", err)
		}
		v = ctx.CompileBytes(data, cue.Filename(path))
	}
	return decode(ctx, v)
}

// Parse reads a plan from CUE source. name is used in error positions.
func Parse(name string, src []byte) (*Plan, error) {
	ctx := cuecontext.New()
	return decode(ctx, ctx.CompileBytes(src, cue.Filename(name)))
}

func decode(ctx *cue.Context, v cue.Value) (*Plan, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("plan schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Plan")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var raw rawPlan
	if err := unified.Decode(&raw); err != nil {
		return nil, formatCUEError(err)
	}
	return build(raw, func(field string) token.Pos {
		return v.LookupPath(cue.ParsePath(field)).Pos()
	})
}

func build(raw rawPlan, pos func(string) token.Pos) (*Plan, error) {
	fail := func(field, format string, args ...any) (*Plan, error) {
		return nil, &Error{Field: field, Message: fmt.Sprintf(format, args...), Pos: pos(field)}
	}

	p := &Plan{
		Seeds:          raw.Seeds,
		Datasets:       raw.Datasets,
		ErrorRates:     raw.ErrorRates,
		ColumnFraction: raw.ColumnFraction,
	}

	var err error
	if p.Experiment, err = identity.ParseExperimentKind(raw.Experiment); err != nil {
		return fail("experiment", "%v", err)
	}
	if len(p.Seeds) == 0 {
		return fail("seeds", "at least one seed is required")
	}
	if len(p.Datasets) == 0 {
		return fail("datasets", "at least one dataset is required")
	}
	if len(raw.Generators) == 0 {
		return fail("generators", "at least one generator is required")
	}
	for _, name := range raw.Generators {
		g, err := identity.ParseGenerator(name)
		if err != nil {
			return fail("generators", "%v", err)
		}
		p.Generators = append(p.Generators, g)
	}
	for _, name := range raw.ErrorKinds {
		k, err := corrupt.ParseKind(name)
		if err != nil {
			return fail("error_kinds", "%v", err)
		}
		if !k.Implemented() {
			return fail("error_kinds", "%s is not implemented", k)
		}
		p.ErrorKinds = append(p.ErrorKinds, k)
	}

	seen := map[int]bool{}
	for _, r := range raw.ErrorRates {
		if r < 0 || r > 1 {
			return fail("error_rates", "rate %v is outside [0, 1]", r)
		}
		pct := identity.RatePercent(r)
		if seen[pct] {
			return fail("error_rates", "rate %d%% appears twice", pct)
		}
		seen[pct] = true
	}
	if c := raw.ColumnFraction; c <= 0 || c > 1 {
		return fail("column_fraction", "%v is outside (0, 1]", c)
	}

	needsErrors := false
	for _, name := range raw.Perfectness {
		level, err := identity.ParsePerfectness(name)
		if err != nil {
			return fail("perfectness", "%v", err)
		}
		if level != identity.Perfect {
			needsErrors = true
		}
		p.Perfectness = append(p.Perfectness, level)
	}
	if needsErrors && (len(p.ErrorKinds) == 0 || len(p.ErrorRates) == 0) {
		return fail("perfectness", "imperfect levels need error_kinds and error_rates")
	}

	for _, re := range raw.Evaluations {
		method, err := identity.ParseMethod(re.Method)
		if err != nil {
			return fail("evaluations", "%v", err)
		}
		targets := make([]identity.Target, len(re.Targets))
		for i, t := range re.Targets {
			targets[i] = identity.Target(t)
		}
		ev, err := identity.NewEvaluation(method, targets...)
		if err != nil {
			return fail("evaluations", "%v", err)
		}
		if method.Dual() != (ev.Second != nil) {
			want := 1
			if method.Dual() {
				want = 2
			}
			return fail("evaluations", "%s takes %d target(s)", method, want)
		}
		p.Evaluations = append(p.Evaluations, ev)
	}

	return p, nil
}

// RatePercents returns the error rates as integer percentages in plan
// order. The first is the rate at which baselines are computed.
func (p *Plan) RatePercents() []int {
	out := make([]int, len(p.ErrorRates))
	for i, r := range p.ErrorRates {
		out[i] = identity.RatePercent(r)
	}
	return out
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &Error{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
