package store

import (
	"context"
	"testing"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

func TestApplyBundle_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.ApplyBundle(ctx, sysCtrlBundle(), "abc123")
	if err != nil {
		t.Fatalf("ApplyBundle() failed: %v", err)
	}
	if runID == "" {
		t.Error("ApplyBundle() returned empty run ID")
	}

	blocks, err := s.ListBlocks(ctx)
	if err != nil {
		t.Fatalf("ListBlocks() failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Name != "sys_ctrl" || blocks[0].BaseAddr != 0x1000 {
		t.Errorf("block = %+v, want sys_ctrl @ 0x1000", blocks[0])
	}
	if blocks[0].Variant != nil {
		t.Errorf("base block variant = %q, want nil", *blocks[0].Variant)
	}

	regs, err := s.ListRegisters(ctx, blocks[0].ID)
	if err != nil {
		t.Fatalf("ListRegisters() failed: %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("got %d registers, want 2", len(regs))
	}
	// Ingest listed STATUS first; reads order by offset.
	if regs[0].Name != "CTRL" || regs[1].Name != "STATUS" {
		t.Errorf("register order = [%s, %s], want [CTRL, STATUS]", regs[0].Name, regs[1].Name)
	}

	fields, err := s.ListFields(ctx, regs[0].ID)
	if err != nil {
		t.Fatalf("ListFields() failed: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	// Ingest listed EN first; reads order by lsb.
	if fields[0].Name != "MODE" || fields[1].Name != "EN" {
		t.Errorf("field order = [%s, %s], want [MODE, EN]", fields[0].Name, fields[1].Name)
	}

	enums, err := s.ListEnumValues(ctx, fields[0].ID)
	if err != nil {
		t.Fatalf("ListEnumValues() failed: %v", err)
	}
	if len(enums) != 2 {
		t.Fatalf("got %d enum values, want 2", len(enums))
	}
	// Ingest listed ON first; reads order by value.
	if enums[0].Name != "OFF" || enums[1].Name != "ON" {
		t.Errorf("enum order = [%s, %s], want [OFF, ON]", enums[0].Name, enums[1].Name)
	}
}

func TestApplyBundle_ReingestIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := s.ApplyBundle(ctx, sysCtrlBundle(), ""); err != nil {
			t.Fatalf("ApplyBundle() iteration %d failed: %v", i, err)
		}
	}

	blocks, err := s.ListBlocks(ctx)
	if err != nil {
		t.Fatalf("ListBlocks() failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks after re-ingest, want 1", len(blocks))
	}

	regs, err := s.ListRegisters(ctx, blocks[0].ID)
	if err != nil {
		t.Fatalf("ListRegisters() failed: %v", err)
	}
	if len(regs) != 2 {
		t.Errorf("got %d registers after re-ingest, want 2 (no duplicates)", len(regs))
	}

	var fieldCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM field").Scan(&fieldCount); err != nil {
		t.Fatalf("count fields: %v", err)
	}
	if fieldCount != 3 {
		t.Errorf("got %d field rows after re-ingest, want 3", fieldCount)
	}
}

func TestApplyBundle_UpdatesBaseAddr(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bundle := sysCtrlBundle()
	if _, err := s.ApplyBundle(ctx, bundle, ""); err != nil {
		t.Fatalf("ApplyBundle() failed: %v", err)
	}

	bundle.Doc.IPBlocks[0].BaseAddr = 0x8000
	if _, err := s.ApplyBundle(ctx, bundle, ""); err != nil {
		t.Fatalf("second ApplyBundle() failed: %v", err)
	}

	blocks, err := s.ListBlocks(ctx)
	if err != nil {
		t.Fatalf("ListBlocks() failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].BaseAddr != 0x8000 {
		t.Errorf("base_addr = %#x, want 0x8000", blocks[0].BaseAddr)
	}
}

func TestApplyBundle_VariantPartitionsBlocks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := sysCtrlBundle()
	if _, err := s.ApplyBundle(ctx, base, ""); err != nil {
		t.Fatalf("base ApplyBundle() failed: %v", err)
	}

	variant := sysCtrlBundle()
	variant.VariantName = "fpga"
	if _, err := s.ApplyBundle(ctx, variant, ""); err != nil {
		t.Fatalf("variant ApplyBundle() failed: %v", err)
	}

	blocks, err := s.ListBlocks(ctx)
	if err != nil {
		t.Fatalf("ListBlocks() failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2 (base + variant)", len(blocks))
	}

	variants := 0
	for _, b := range blocks {
		if b.Variant != nil {
			variants++
			if *b.Variant != "fpga" {
				t.Errorf("variant = %q, want fpga", *b.Variant)
			}
		}
	}
	if variants != 1 {
		t.Errorf("got %d variant-tagged blocks, want 1", variants)
	}
}

func TestApplyBundle_ReplacesConstraints(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.ApplyBundle(ctx, sysCtrlBundle(), ""); err != nil {
		t.Fatalf("ApplyBundle() failed: %v", err)
	}

	next := sysCtrlBundle()
	next.Doc.Constraints = []ir.ConstraintDef{
		{
			Name:      "status_read_only",
			AppliesTo: ir.AppliesToReg,
			Match:     map[string]any{"reg": "STATUS"},
			Rule:      "access == RO",
			Severity:  ir.SeverityWarn,
		},
	}
	if _, err := s.ApplyBundle(ctx, next, ""); err != nil {
		t.Fatalf("second ApplyBundle() failed: %v", err)
	}

	constraints, err := s.ListConstraints(ctx)
	if err != nil {
		t.Fatalf("ListConstraints() failed: %v", err)
	}
	if len(constraints) != 1 {
		t.Fatalf("got %d constraints, want 1 (wholesale replace)", len(constraints))
	}
	c := constraints[0]
	if c.Name != "status_read_only" || c.Severity != ir.SeverityWarn {
		t.Errorf("constraint = %+v, want status_read_only WARN", c)
	}
	if got := c.Match["reg"]; got != "STATUS" {
		t.Errorf("match[reg] = %v, want STATUS", got)
	}
}

func TestReplaceRegisters_EmptySetCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.ApplyBundle(ctx, sysCtrlBundle(), ""); err != nil {
		t.Fatalf("ApplyBundle() failed: %v", err)
	}

	blocks, err := s.ListBlocks(ctx)
	if err != nil {
		t.Fatalf("ListBlocks() failed: %v", err)
	}
	if err := s.ReplaceRegisters(ctx, blocks[0].ID, nil); err != nil {
		t.Fatalf("ReplaceRegisters() failed: %v", err)
	}

	for _, table := range []string{"reg", "field", "enum_value"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows after empty replace, want 0 (cascade)", table, count)
		}
	}
}

func TestUpsertBlock_IdempotentOnNameVariant(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertBlock(ctx, "uart", 0x2000, nil)
	if err != nil {
		t.Fatalf("UpsertBlock() failed: %v", err)
	}
	id2, err := s.UpsertBlock(ctx, "uart", 0x3000, nil)
	if err != nil {
		t.Fatalf("second UpsertBlock() failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("ids differ (%d vs %d), want same row", id1, id2)
	}

	blocks, err := s.ListBlocks(ctx)
	if err != nil {
		t.Fatalf("ListBlocks() failed: %v", err)
	}
	if len(blocks) != 1 || blocks[0].BaseAddr != 0x3000 {
		t.Errorf("blocks = %+v, want single uart @ 0x3000", blocks)
	}
}

func TestLatestSpecVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, _, ok, err := s.LatestSpecVersion(ctx)
	if err != nil {
		t.Fatalf("LatestSpecVersion() failed: %v", err)
	}
	if ok {
		t.Error("LatestSpecVersion() ok = true on empty store")
	}

	bundle := sysCtrlBundle()
	bundle.VariantName = "fpga"
	runID, err := s.ApplyBundle(ctx, bundle, "deadbeef")
	if err != nil {
		t.Fatalf("ApplyBundle() failed: %v", err)
	}

	version, variant, gotRun, ok, err := s.LatestSpecVersion(ctx)
	if err != nil {
		t.Fatalf("LatestSpecVersion() failed: %v", err)
	}
	if !ok {
		t.Fatal("LatestSpecVersion() ok = false after ingest")
	}
	if version != "1.0" || variant != "fpga" || gotRun != runID {
		t.Errorf("got (%s, %s, %s), want (1.0, fpga, %s)", version, variant, gotRun, runID)
	}
}
