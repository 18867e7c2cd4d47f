// Package canon provides canonical serialization and content hashing for synq.
//
// Everything that must be byte-identical across runs (table fingerprints,
// ledger payloads, artifact keys) goes through MarshalCanonical and
// HashWithDomain. canon imports nothing internal.
//
// Key design constraints:
//   - NO float values in canonical JSON; floats are carried as their IEEE-754
//     bit pattern via Float64Bits
//   - Object keys ordered by UTF-16 code units (RFC 8785)
//   - Strings NFC normalized at the serialization boundary
package canon
