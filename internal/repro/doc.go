// Package repro provides the explicit random context every randomized
// operation in synq draws from.
//
// A Context carries a single optional seed. Each draw first re-seeds the
// underlying PCG generator from that seed, so a draw depends only on the
// seed and its own arguments, never on what was drawn before it. A Context
// that was never seeded refuses to draw; there is no fallback to system
// entropy.
//
// A Context is not safe for concurrent use. Pass it explicitly to the code
// that needs randomness instead of sharing one across goroutines.
package repro
