// Package ir defines the canonical register-spec model.
//
// The model is a hierarchy of IP blocks, registers, bit-fields, and
// enumerated field values, plus a flat list of DV constraint definitions:
//
//	IPBlockDef -> RegisterDef -> FieldDef -> EnumValueDef
//	ConstraintDef (global, not scoped to a block)
//
// Two views of the model exist:
//
//   - Document types (SpecDoc and friends): the nested form produced by
//     YAML ingest. Construction-time invariants (msb >= lsb, known
//     applies_to/severity tokens) are enforced during decode, so code
//     downstream of ingest never sees a malformed field range.
//   - Row types (Block, Register, Field, EnumValue): the flat form read
//     back from the spec store, carrying store IDs for child lookups.
//     The SpecReader interface is the read contract consumed by the
//     validation engine and the export projections.
//
// Constraint match predicates are opaque structured data. They are
// serialized with MarshalCanonical so that the stored form and every
// exported form are byte-identical across runs.
package ir
