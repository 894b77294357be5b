// Package export implements the deterministic artifact projections over
// the register-spec store.
//
// Four independent projections read the store through ir.SpecReader and
// write to an io.Writer:
//
//	WriteRegistersJSON   nested JSON document, decimal integers
//	WriteRegistersXML    attribute-based XML, hex addresses/offsets
//	WriteConstraintsJSON DV constraint configuration (canonical match JSON)
//	WriteUVMRegModel     SystemVerilog UVM register model classes
//
// All four are pure over the same model state: output depends only on the
// store contents, with stable ordering (blocks by name, registers by
// offset, fields by lsb, enum values by value) supplied by the store's
// read queries. The projections assume a pre-validated model; ranges and
// reset values are emitted as stored, never re-checked.
package export
