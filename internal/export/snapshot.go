package export

import (
	"context"
	"fmt"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// Document is the fully materialized block/register/field/enum tree read
// from the store. The register projections share one snapshot walk so
// every format sees the same ordering.
type Document struct {
	Blocks []BlockNode
}

// BlockNode pairs a block row with its registers.
type BlockNode struct {
	Block     ir.Block
	Registers []RegisterNode
}

// RegisterNode pairs a register row with its fields.
type RegisterNode struct {
	Register ir.Register
	Fields   []FieldNode
}

// FieldNode pairs a field row with its enumerants.
type FieldNode struct {
	Field ir.Field
	Enum  []ir.EnumValue
}

// Snapshot reads the complete register tree. Ordering comes from the
// store queries: blocks by name, registers by offset, fields by lsb, enum
// values by value.
func Snapshot(ctx context.Context, reader ir.SpecReader) (*Document, error) {
	blocks, err := reader.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	doc := &Document{Blocks: []BlockNode{}}
	for _, blk := range blocks {
		regs, err := reader.ListRegisters(ctx, blk.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: block %q: %w", blk.Name, err)
		}

		blockNode := BlockNode{Block: blk, Registers: []RegisterNode{}}
		for _, reg := range regs {
			fields, err := reader.ListFields(ctx, reg.ID)
			if err != nil {
				return nil, fmt.Errorf("snapshot: register %s.%s: %w", blk.Name, reg.Name, err)
			}

			regNode := RegisterNode{Register: reg, Fields: []FieldNode{}}
			for _, f := range fields {
				enums, err := reader.ListEnumValues(ctx, f.ID)
				if err != nil {
					return nil, fmt.Errorf("snapshot: field %s.%s.%s: %w", blk.Name, reg.Name, f.Name, err)
				}
				regNode.Fields = append(regNode.Fields, FieldNode{Field: f, Enum: enums})
			}
			blockNode.Registers = append(blockNode.Registers, regNode)
		}
		doc.Blocks = append(doc.Blocks, blockNode)
	}

	return doc, nil
}
