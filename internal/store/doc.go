// Package store provides the SQLite-backed spec store.
//
// It is the single home of the canonical register-spec model between runs:
// ingest writes it, the validation engine and the export projections read
// it back through the ir.SpecReader interface.
//
// # Write contract
//
// ApplyBundle is the only writer and runs as one transaction: per-block
// upsert, cascade-delete of the block's old register set, bulk insert of
// the new one, wholesale replacement of the global constraint list, and a
// spec_version provenance row. Either the whole bundle lands or the prior
// state survives untouched; a block can never end up holding registers
// from two different source versions.
//
// # Read contract
//
// Every listing carries a deterministic ORDER BY (blocks by name,
// registers by offset, fields by lsb, enum values by value) so that
// validation output and exported artifacts are stable across runs.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: cascade deletes depend on it
package store
