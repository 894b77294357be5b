package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// WriteUVMRegModel projects the stored register tree as a SystemVerilog
// UVM register model.
//
// Each IP block becomes one uvm_reg_block whose default map sits at the
// block's base_addr; each register becomes one uvm_reg mapped at its
// offset, exposing one uvm_reg_field per field configured with its
// [msb:lsb] position, access-policy token, and reset value. The access
// token (RW/RO/WO/W1C/...) is passed straight to uvm_reg_field::configure,
// which is where read/write legality and write-one-to-clear side effects
// take effect in the verification environment.
func WriteUVMRegModel(ctx context.Context, reader ir.SpecReader, w io.Writer) error {
	doc, err := Snapshot(ctx, reader)
	if err != nil {
		return fmt.Errorf("export regmodel: %w", err)
	}

	var b strings.Builder
	b.WriteString("// UVM register model generated from the spec store. Do not edit.\n\n")
	b.WriteString("`ifndef SPEC2DV_UVM_REGMODEL_SV\n")
	b.WriteString("`define SPEC2DV_UVM_REGMODEL_SV\n")

	for _, blockNode := range doc.Blocks {
		blockIdent := blockIdentifier(blockNode.Block)

		for _, regNode := range blockNode.Registers {
			writeRegClass(&b, blockIdent, regNode)
		}
		writeBlockClass(&b, blockIdent, blockNode)
	}

	b.WriteString("\n`endif\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("export regmodel: %w", err)
	}
	return nil
}

func writeRegClass(b *strings.Builder, blockIdent string, regNode RegisterNode) {
	reg := regNode.Register
	className := fmt.Sprintf("%s_%s_reg", blockIdent, sanitizeIdent(reg.Name))

	fmt.Fprintf(b, "\nclass %s extends uvm_reg;\n", className)
	fmt.Fprintf(b, "  `uvm_object_utils(%s)\n\n", className)

	for _, fieldNode := range regNode.Fields {
		fmt.Fprintf(b, "  rand uvm_reg_field %s;\n", sanitizeIdent(fieldNode.Field.Name))
	}

	fmt.Fprintf(b, "\n  function new(string name = %q);\n", className)
	fmt.Fprintf(b, "    super.new(name, %d, UVM_NO_COVERAGE);\n", reg.Width)
	b.WriteString("  endfunction\n\n")

	b.WriteString("  virtual function void build();\n")
	for _, fieldNode := range regNode.Fields {
		f := fieldNode.Field
		ident := sanitizeIdent(f.Name)
		fmt.Fprintf(b, "    %s = uvm_reg_field::type_id::create(%q);\n", ident, f.Name)
		// configure(parent, size, lsb_pos, access, volatile, reset, has_reset, is_rand, individually_accessible)
		fmt.Fprintf(b, "    %s.configure(this, %d, %d, %q, 0, %d'h%x, 1, 1, 0);\n",
			ident, f.Width(), f.LSB, f.Access, f.Width(), f.Reset)
	}
	b.WriteString("  endfunction\nendclass\n")
}

func writeBlockClass(b *strings.Builder, blockIdent string, blockNode BlockNode) {
	className := fmt.Sprintf("%s_block", blockIdent)

	fmt.Fprintf(b, "\nclass %s extends uvm_reg_block;\n", className)
	fmt.Fprintf(b, "  `uvm_object_utils(%s)\n\n", className)

	for _, regNode := range blockNode.Registers {
		fmt.Fprintf(b, "  rand %s_%s_reg %s;\n",
			blockIdent, sanitizeIdent(regNode.Register.Name), sanitizeIdent(regNode.Register.Name))
	}

	fmt.Fprintf(b, "\n  function new(string name = %q);\n", className)
	b.WriteString("    super.new(name, UVM_NO_COVERAGE);\n")
	b.WriteString("  endfunction\n\n")

	b.WriteString("  virtual function void build();\n")
	fmt.Fprintf(b, "    default_map = create_map(\"default_map\", 'h%x, %d, UVM_LITTLE_ENDIAN);\n",
		blockNode.Block.BaseAddr, mapByteWidth(blockNode))

	for _, regNode := range blockNode.Registers {
		reg := regNode.Register
		ident := sanitizeIdent(reg.Name)
		fmt.Fprintf(b, "\n    %s = %s_%s_reg::type_id::create(%q);\n", ident, blockIdent, ident, reg.Name)
		fmt.Fprintf(b, "    %s.configure(this);\n", ident)
		fmt.Fprintf(b, "    %s.build();\n", ident)
		fmt.Fprintf(b, "    default_map.add_reg(%s, 'h%x, \"RW\");\n", ident, reg.Offset)
	}

	b.WriteString("  endfunction\nendclass\n")
}

// blockIdentifier derives the class-name prefix for a block. Variant
// blocks get a double-underscore variant suffix so base and variant
// models can coexist in one compilation unit.
func blockIdentifier(blk ir.Block) string {
	ident := sanitizeIdent(blk.Name)
	if blk.Variant != nil && *blk.Variant != "" {
		ident += "__" + sanitizeIdent(*blk.Variant)
	}
	return ident
}

// mapByteWidth returns the bus byte width for a block's default map: the
// widest register rounded up to whole bytes, defaulting to 4 for a block
// with no registers.
func mapByteWidth(blockNode BlockNode) int {
	maxWidth := 0
	for _, regNode := range blockNode.Registers {
		if regNode.Register.Width > maxWidth {
			maxWidth = regNode.Register.Width
		}
	}
	if maxWidth == 0 {
		return 4
	}
	return (maxWidth + 7) / 8
}

// sanitizeIdent maps a spec name to a legal SystemVerilog identifier.
func sanitizeIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
