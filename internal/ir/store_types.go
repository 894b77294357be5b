package ir

import "context"

// NOTE: These are store-layer row types, not the nested document model.
// They carry auto-increment IDs so consumers can walk parent -> child.

// Block is a stored IP block row. Variant is nil for the base (un-tagged)
// spec; exporters rely on the distinction.
type Block struct {
	ID       int64
	Name     string
	BaseAddr int64
	Variant  *string
}

// Register is a stored register row.
type Register struct {
	ID      int64
	BlockID int64
	Name    string
	Offset  int64
	Width   int
}

// Field is a stored field row.
type Field struct {
	ID     int64
	RegID  int64
	Name   string
	LSB    int
	MSB    int
	Access string
	Reset  int64
}

// Width returns the field's bit width, msb - lsb + 1.
func (f Field) Width() int {
	return (f.MSB - f.LSB) + 1
}

// EnumValue is a stored enumerant row.
type EnumValue struct {
	Name  string
	Value int64
}

// SpecReader is the read contract the validation engine and the export
// projections consume. Any backing store qualifies; the SQLite store in
// internal/store is the canonical implementation.
//
// Every listing is deterministically ordered: blocks by name, registers by
// offset, fields by lsb, enum values by value. Constraints are returned in
// stored order. Consumers depend on this ordering for stable output.
type SpecReader interface {
	ListBlocks(ctx context.Context) ([]Block, error)
	ListRegisters(ctx context.Context, blockID int64) ([]Register, error)
	ListFields(ctx context.Context, regID int64) ([]Field, error)
	ListEnumValues(ctx context.Context, fieldID int64) ([]EnumValue, error)
	ListConstraints(ctx context.Context) ([]ConstraintDef, error)
}
