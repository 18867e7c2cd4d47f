package identity

import (
	"fmt"
	"strings"
)

// ExperimentKind is the family an experiment belongs to.
type ExperimentKind int

const (
	Normal ExperimentKind = iota + 1
	Privacy
	Augmentation
	Rebalancing
)

var experimentKindNames = map[ExperimentKind]string{
	Normal:       "normal",
	Privacy:      "privacy",
	Augmentation: "augmentation",
	Rebalancing:  "rebalancing",
}

// String returns the long name.
func (k ExperimentKind) String() string {
	if name, ok := experimentKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ExperimentKind(%d)", int(k))
}

// Short returns the identity token: the first three letters, upper case.
func (k ExperimentKind) Short() string {
	return strings.ToUpper(k.String()[:3])
}

func (k ExperimentKind) valid() bool {
	_, ok := experimentKindNames[k]
	return ok
}

// ParseExperimentKind accepts the long name or the short token.
func ParseExperimentKind(s string) (ExperimentKind, error) {
	for k := range experimentKindNames {
		if s == k.String() || s == k.Short() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown experiment kind %q", s)
}

// Perfectness says how clean the training data of an experiment is.
type Perfectness int

const (
	Perfect Perfectness = iota + 1
	Imperfect
	SemiPerfect
)

var perfectnessNames = map[Perfectness]string{
	Perfect:     "perfect",
	Imperfect:   "imperfect",
	SemiPerfect: "semiperfect",
}

// String returns the long name.
func (p Perfectness) String() string {
	if name, ok := perfectnessNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Perfectness(%d)", int(p))
}

// Short returns the identity token: IMP for imperfect, otherwise the first
// four letters, upper case.
func (p Perfectness) Short() string {
	upper := strings.ToUpper(p.String())
	if p == Imperfect {
		return upper[:3]
	}
	return upper[:4]
}

func (p Perfectness) valid() bool {
	_, ok := perfectnessNames[p]
	return ok
}

// ParsePerfectness accepts the long name or the short token.
func ParsePerfectness(s string) (Perfectness, error) {
	for p := range perfectnessNames {
		if s == p.String() || s == p.Short() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown perfectness %q", s)
}

// Generator names a synthetic data generator.
type Generator string

// Known generators.
const (
	CTGAN                 Generator = "ctgan"
	NFlow                 Generator = "nflow"
	RTVAE                 Generator = "rtvae"
	TVAE                  Generator = "tvae"
	DDPM                  Generator = "ddpm"
	ARF                   Generator = "arf"
	MarginalDistributions Generator = "marginal_distributions"
	BayesianNetwork       Generator = "bayesian_network"
	GReaT                 Generator = "great"
	RealTabFormer         Generator = "realtabformer"
	TabPFN                Generator = "tabpfn"
	TabEBM                Generator = "tabebm"
	ADSGAN                Generator = "adsgan"
	PATEGAN               Generator = "pategan"
	AIM                   Generator = "aim"
	DPGAN                 Generator = "dpgan"
	DECAF                 Generator = "decaf"
	PrivBayes             Generator = "privbayes"
	Bootstrap             Generator = "bootstrap"
)

var knownGenerators = []Generator{
	CTGAN, NFlow, RTVAE, TVAE, DDPM, ARF, MarginalDistributions, BayesianNetwork, GReaT,
	RealTabFormer, TabPFN, TabEBM, ADSGAN, PATEGAN, AIM, DPGAN, DECAF, PrivBayes, Bootstrap,
}

// Generators returns every known generator.
func Generators() []Generator {
	out := make([]Generator, len(knownGenerators))
	copy(out, knownGenerators)
	return out
}

// ParseGenerator resolves a known generator name.
func ParseGenerator(s string) (Generator, error) {
	for _, g := range knownGenerators {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown generator %q", s)
}

// Method names an evaluation metric.
type Method string

// Evaluation methods. Dual methods compare two targets; the rest score one.
const (
	DCR Method = "DCR"
	DFD Method = "DFD"
	DPR Method = "DPR"
	HFD Method = "HFD"
	IFO Method = "IFO"
	LOF Method = "LOF"
	APR Method = "APR"
	ARC Method = "ARC"
	AR2 Method = "AR2"
	EFF Method = "EFF"
	QLT Method = "QLT"
)

var dualMethods = map[Method]bool{DCR: true, DPR: true, APR: true, ARC: true, AR2: true, EFF: true, QLT: true}

var singleMethods = map[Method]bool{DFD: true, HFD: true, IFO: true, LOF: true}

// Dual reports whether m compares two targets.
func (m Method) Dual() bool { return dualMethods[m] }

// ParseMethod resolves a method token.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if dualMethods[m] || singleMethods[m] {
		return m, nil
	}
	return "", fmt.Errorf("unknown evaluation method %q", s)
}

// Target is the data an evaluation looks at.
type Target string

const (
	// Real is the clean real data.
	Real Target = "R"
	// Synthetic is synthetic data trained on clean real data.
	Synthetic Target = "S"
	// RealHurt is the corrupted real data.
	RealHurt Target = "RH"
	// SyntheticHurt is synthetic data trained on corrupted real data.
	SyntheticHurt Target = "SH"
)

// Clean reports whether t is derived from uncorrupted data.
func (t Target) Clean() bool {
	return t == Real || t == Synthetic
}

// ParseTarget resolves a target token.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case Real, Synthetic, RealHurt, SyntheticHurt:
		return t, nil
	}
	return "", fmt.Errorf("unknown evaluation target %q", s)
}
