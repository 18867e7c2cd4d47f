// Package plan loads sweep plans written in CUE.
//
// A plan names the axes of a sweep:
//
//	seeds:       [100, 200]
//	datasets:    ["adult"]
//	generators:  ["ctgan", "bootstrap"]
//	error_kinds: ["gaussian_noise", "placeholder"]
//	error_rates: [0.1, 0.2, 0.4]
//	perfectness: ["perfect", "imperfect"]
//	evaluations: [{method: "QLT", targets: ["R", "S"]}]
//
// Plans are validated against an embedded schema and then checked against
// the known generators, corruption kinds and evaluation methods. Expand
// turns a plan into the ordered list of configurations a sweep runs.
package plan
