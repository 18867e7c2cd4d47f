// Package table is the in-memory tabular data model the corruption engine
// works on: named columns typed numeric or categorical, nullable cells, an
// optional target column and stable integer row keys.
//
// Row keys survive Clone and Take. Reorder and Append are the only ways to
// change them; Reorder assigns a fresh 0..n-1 index.
package table
