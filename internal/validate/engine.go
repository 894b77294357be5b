package validate

import (
	"context"
	"fmt"
	"sort"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// regSnapshot pairs a register with its fields (already ordered by lsb)
// and the name of the owning block.
type regSnapshot struct {
	blockName string
	reg       ir.Register
	fields    []ir.Field
}

// Run executes every check over every field in the store and returns the
// full issue list. The pass is read-only and never stops early: each check
// is independent and exhaustive. Only store-access failures return a
// non-nil error.
func Run(ctx context.Context, reader ir.SpecReader) (*Result, error) {
	snapshots, err := collect(ctx, reader)
	if err != nil {
		return nil, err
	}

	res := &Result{Issues: []Issue{}}

	// Per-field checks first, in (block, register, lsb) order.
	for _, snap := range snapshots {
		for _, f := range snap.fields {
			checkFieldRange(res, snap, f)
			checkResetWidth(res, snap, f)
		}
	}

	// Overlap sweep per register.
	for _, snap := range snapshots {
		checkFieldOverlap(res, snap)
	}

	return res, nil
}

// collect reads every register with its fields, ordered by block name then
// register name. Fields arrive ordered by lsb from the store.
func collect(ctx context.Context, reader ir.SpecReader) ([]regSnapshot, error) {
	blocks, err := reader.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var snapshots []regSnapshot
	for _, blk := range blocks {
		regs, err := reader.ListRegisters(ctx, blk.ID)
		if err != nil {
			return nil, fmt.Errorf("validate: block %q: %w", blk.Name, err)
		}

		// The store orders registers by offset; issue grouping is by name.
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].Name < regs[j].Name })

		for _, reg := range regs {
			fields, err := reader.ListFields(ctx, reg.ID)
			if err != nil {
				return nil, fmt.Errorf("validate: register %s.%s: %w", blk.Name, reg.Name, err)
			}
			snapshots = append(snapshots, regSnapshot{blockName: blk.Name, reg: reg, fields: fields})
		}
	}

	return snapshots, nil
}

// checkFieldRange reports a field whose [lsb, msb] escapes the register.
func checkFieldRange(res *Result, snap regSnapshot, f ir.Field) {
	if f.LSB < 0 || f.MSB >= snap.reg.Width {
		res.Issues = append(res.Issues, Issue{
			Severity: ir.SeverityError,
			Code:     CodeFieldRange,
			Context:  fmt.Sprintf("%s.%s.%s", snap.blockName, snap.reg.Name, f.Name),
			Message:  fmt.Sprintf("Field bits [%d:%d] outside register width %d", f.MSB, f.LSB, snap.reg.Width),
		})
	}
}

// checkResetWidth reports a reset value that does not fit the field's own
// bit width. Widths of 63 bits and above cannot overflow an int64 reset,
// so only the negative check applies there.
func checkResetWidth(res *Result, snap regSnapshot, f ir.Field) {
	width := f.Width()
	bad := f.Reset < 0
	var maxVal int64
	if width < 63 {
		maxVal = (int64(1) << uint(width)) - 1
		bad = bad || f.Reset > maxVal
	} else {
		maxVal = int64(^uint64(0) >> 1)
	}
	if bad {
		res.Issues = append(res.Issues, Issue{
			Severity: ir.SeverityError,
			Code:     CodeResetWidth,
			Context:  fmt.Sprintf("%s.%s.%s", snap.blockName, snap.reg.Name, f.Name),
			Message:  fmt.Sprintf("Reset %d does not fit width %d (max %d)", f.Reset, width, maxVal),
		})
	}
}

// checkFieldOverlap sweeps the register's fields in ascending lsb order,
// comparing each field against every previously accepted range. Two ranges
// are disjoint iff new.msb < other.lsb or new.lsb > other.msb; anything
// else is an overlap. The comparison is pairwise against all prior fields,
// so three mutually overlapping fields yield one issue per pair.
func checkFieldOverlap(res *Result, snap regSnapshot) {
	type span struct {
		lsb, msb int
		name     string
	}

	var accepted []span
	for _, f := range snap.fields {
		for _, other := range accepted {
			if f.MSB < other.lsb || f.LSB > other.msb {
				continue
			}
			res.Issues = append(res.Issues, Issue{
				Severity: ir.SeverityError,
				Code:     CodeFieldOverlap,
				Context:  fmt.Sprintf("%s.%s", snap.blockName, snap.reg.Name),
				Message: fmt.Sprintf("Field %s [%d:%d] overlaps %s [%d:%d]",
					f.Name, f.MSB, f.LSB, other.name, other.msb, other.lsb),
			})
		}
		accepted = append(accepted, span{lsb: f.LSB, msb: f.MSB, name: f.Name})
	}
}
