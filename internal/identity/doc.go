// Package identity gives every experiment and evaluation a deterministic,
// reversible string key.
//
// In memory an identity is a record with named fields. On the wire it is
// the fields' short forms joined with '#', with NULL standing in for an
// absent optional field:
//
//	NOR#adult#42#IMP#gaussian_noise#20#ctgan
//	NOR#adult#42#PERF#NULL#NULL#ctgan
//
// Error rates are stored as integer percentages so that 0.4 and 0.40 can
// never produce different keys. Decoding dispatches on the field count;
// adding a field means adding a new schema version, never reinterpreting
// an old one.
//
// An evaluation key is method#first#second (second may be NULL). The key of
// an evaluation of an experiment, a computation, is the evaluation key and
// the experiment key joined with '/'.
package identity
