// Package pgstore is the Postgres computation ledger, for sweeps that share
// results through a database server. It has the same tables and invariants
// as the SQLite ledger in package store; the schema is managed by goose
// migrations embedded in the binary.
package pgstore
