package validate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
	"github.com/sajansshergill/spec2dv-data-modeler/internal/store"
)

// storeWith ingests a single block named "blk" holding one register built
// from the given definition.
func storeWith(t *testing.T, reg ir.RegisterDef) *store.Store {
	t.Helper()
	return storeWithBlocks(t, []ir.IPBlockDef{
		{Name: "blk", BaseAddr: 0x0, Registers: []ir.RegisterDef{reg}},
	})
}

func storeWithBlocks(t *testing.T, blocks []ir.IPBlockDef) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "spec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	bundle := ir.Bundle{
		SpecVersion: "test",
		Doc:         ir.SpecDoc{SpecVersion: "test", IPBlocks: blocks},
	}
	_, err = s.ApplyBundle(context.Background(), bundle, "")
	require.NoError(t, err)
	return s
}

func TestRun_CleanSpec(t *testing.T) {
	s := storeWith(t, ir.RegisterDef{
		Name: "CTRL", Offset: 0, Width: 32,
		Fields: []ir.FieldDef{
			{Name: "MODE", LSB: 0, MSB: 1, Access: "RW", Reset: 2},
			{Name: "EN", LSB: 2, MSB: 2, Access: "RW", Reset: 1},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 0, res.ErrorCount())
}

func TestRun_ResetExceedsFieldWidth(t *testing.T) {
	// Register width 8, field [7:4], reset 20: 20 > 15.
	s := storeWith(t, ir.RegisterDef{
		Name: "CFG", Offset: 0, Width: 8,
		Fields: []ir.FieldDef{
			{Name: "DIV", LSB: 4, MSB: 7, Access: "RW", Reset: 20},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)

	issue := res.Issues[0]
	assert.Equal(t, CodeResetWidth, issue.Code)
	assert.Equal(t, ir.SeverityError, issue.Severity)
	assert.Equal(t, "blk.CFG.DIV", issue.Context)
	assert.Contains(t, issue.Message, "Reset 20")
	assert.Contains(t, issue.Message, "max 15")
}

func TestRun_NegativeResetRejected(t *testing.T) {
	s := storeWith(t, ir.RegisterDef{
		Name: "CFG", Offset: 0, Width: 8,
		Fields: []ir.FieldDef{
			{Name: "DIV", LSB: 0, MSB: 3, Access: "RW", Reset: -1},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, CodeResetWidth, res.Issues[0].Code)
}

func TestRun_AdjacentFieldsDoNotOverlap(t *testing.T) {
	// [3:0] and [7:4] touch but never intersect.
	s := storeWith(t, ir.RegisterDef{
		Name: "CFG", Offset: 0, Width: 8,
		Fields: []ir.FieldDef{
			{Name: "LO", LSB: 0, MSB: 3, Access: "RW", Reset: 0},
			{Name: "HI", LSB: 4, MSB: 7, Access: "RW", Reset: 0},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
}

func TestRun_OverlappingFields(t *testing.T) {
	// [3:0] and [6:2] intersect: exactly one issue naming both fields.
	s := storeWith(t, ir.RegisterDef{
		Name: "CFG", Offset: 0, Width: 8,
		Fields: []ir.FieldDef{
			{Name: "LO", LSB: 0, MSB: 3, Access: "RW", Reset: 0},
			{Name: "MID", LSB: 2, MSB: 6, Access: "RW", Reset: 0},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)

	issue := res.Issues[0]
	assert.Equal(t, CodeFieldOverlap, issue.Code)
	assert.Equal(t, "blk.CFG", issue.Context)
	assert.Contains(t, issue.Message, "MID")
	assert.Contains(t, issue.Message, "LO")
}

func TestRun_ThreeWayOverlapReportsEveryPair(t *testing.T) {
	s := storeWith(t, ir.RegisterDef{
		Name: "CFG", Offset: 0, Width: 32,
		Fields: []ir.FieldDef{
			{Name: "A", LSB: 0, MSB: 10, Access: "RW", Reset: 0},
			{Name: "B", LSB: 2, MSB: 12, Access: "RW", Reset: 0},
			{Name: "C", LSB: 4, MSB: 14, Access: "RW", Reset: 0},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	// B vs A, C vs A, C vs B.
	assert.Len(t, res.Issues, 3)
	for _, issue := range res.Issues {
		assert.Equal(t, CodeFieldOverlap, issue.Code)
	}
}

func TestRun_FieldRange(t *testing.T) {
	tests := []struct {
		name  string
		field ir.FieldDef
		fires bool
	}{
		{"fits_exactly", ir.FieldDef{Name: "F", LSB: 0, MSB: 7, Access: "RW"}, false},
		{"msb_escapes", ir.FieldDef{Name: "F", LSB: 4, MSB: 8, Access: "RW"}, true},
		{"negative_lsb", ir.FieldDef{Name: "F", LSB: -1, MSB: 3, Access: "RW"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storeWith(t, ir.RegisterDef{
				Name: "CFG", Offset: 0, Width: 8,
				Fields: []ir.FieldDef{tt.field},
			})

			res, err := Run(context.Background(), s)
			require.NoError(t, err)

			found := false
			for _, issue := range res.Issues {
				if issue.Code == CodeFieldRange {
					found = true
				}
			}
			assert.Equal(t, tt.fires, found)
		})
	}
}

func TestRun_ChecksDoNotShortCircuit(t *testing.T) {
	// One field that both escapes the register and overflows its reset:
	// both issues must surface in one pass.
	s := storeWith(t, ir.RegisterDef{
		Name: "CFG", Offset: 0, Width: 4,
		Fields: []ir.FieldDef{
			{Name: "F", LSB: 2, MSB: 5, Access: "RW", Reset: 99},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)

	codes := make([]string, 0, len(res.Issues))
	for _, issue := range res.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, CodeFieldRange)
	assert.Contains(t, codes, CodeResetWidth)
}

func TestRun_IssuesGroupedByBlockThenRegister(t *testing.T) {
	bad := func(name string) ir.FieldDef {
		return ir.FieldDef{Name: name, LSB: 0, MSB: 40, Access: "RW"}
	}
	s := storeWithBlocks(t, []ir.IPBlockDef{
		{
			Name: "zeta", BaseAddr: 0x2000,
			Registers: []ir.RegisterDef{
				{Name: "R0", Offset: 0, Width: 32, Fields: []ir.FieldDef{bad("F")}},
			},
		},
		{
			Name: "alpha", BaseAddr: 0x1000,
			Registers: []ir.RegisterDef{
				{Name: "R9", Offset: 0, Width: 32, Fields: []ir.FieldDef{bad("F")}},
				{Name: "R1", Offset: 4, Width: 32, Fields: []ir.FieldDef{bad("F")}},
			},
		},
	})

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Issues, 3)

	contexts := []string{res.Issues[0].Context, res.Issues[1].Context, res.Issues[2].Context}
	assert.Equal(t, []string{"alpha.R1.F", "alpha.R9.F", "zeta.R0.F"}, contexts)
}

func TestErrorCount(t *testing.T) {
	res := &Result{Issues: []Issue{
		{Severity: ir.SeverityError, Code: CodeFieldRange},
		{Severity: ir.SeverityWarn, Code: CodeResetWidth},
		{Severity: ir.SeverityError, Code: CodeFieldOverlap},
	}}
	assert.Equal(t, 2, res.ErrorCount())
	assert.Equal(t, "Validation: 3 issues (2 errors)", res.Summary())
}
