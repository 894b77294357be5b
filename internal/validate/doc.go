// Package validate implements the structural validation engine for the
// register-spec store.
//
// Run is a pure read pass: it walks every field in the store, applies
// every check unconditionally, and returns the complete issue list. Checks
// never short-circuit - one run surfaces every defect so a single
// consolidated report covers the whole spec. Issues are data, not errors;
// only store-access failures propagate as errors.
//
// Checks (all ERROR severity):
//
//	FIELD_RANGE    field's [lsb, msb] escapes [0, register.width-1]
//	RESET_WIDTH    reset value does not fit in msb-lsb+1 bits, or is negative
//	FIELD_OVERLAP  two fields in one register claim intersecting bit ranges
//
// Constraint definitions are not evaluated here; their rule expressions
// are an inert extension point carried through to the DV export.
package validate
