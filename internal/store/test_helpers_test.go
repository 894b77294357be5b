package store

import (
	"path/filepath"
	"testing"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// openTestStore opens a fresh store under t.TempDir.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "spec.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sysCtrlBundle is a small two-register bundle. Registers, fields, and
// enum values are deliberately listed out of their canonical order so
// read-side ordering is actually exercised.
func sysCtrlBundle() ir.Bundle {
	doc := ir.SpecDoc{
		SpecVersion: "1.0",
		IPBlocks: []ir.IPBlockDef{
			{
				Name:     "sys_ctrl",
				BaseAddr: 0x1000,
				Registers: []ir.RegisterDef{
					{
						Name:   "STATUS",
						Offset: 0x14,
						Width:  32,
						Fields: []ir.FieldDef{
							{Name: "READY", LSB: 0, MSB: 0, Access: "RO", Reset: 0},
						},
					},
					{
						Name:   "CTRL",
						Offset: 0x10,
						Width:  32,
						Fields: []ir.FieldDef{
							{Name: "EN", LSB: 2, MSB: 2, Access: "RW", Reset: 1},
							{
								Name: "MODE", LSB: 0, MSB: 1, Access: "RW", Reset: 0,
								Enum: []ir.EnumValueDef{
									{Name: "ON", Value: 1},
									{Name: "OFF", Value: 0},
								},
							},
						},
					},
				},
			},
		},
		Constraints: []ir.ConstraintDef{
			{
				Name:      "legal_mode_values",
				AppliesTo: ir.AppliesToField,
				Match:     map[string]any{"reg": "CTRL", "field": "MODE"},
				Rule:      "value inside {enum}",
				Severity:  ir.SeverityError,
			},
		},
	}

	return ir.Bundle{SpecVersion: doc.SpecVersion, Doc: doc, VariantOverrides: map[string]any{}}
}
