package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// Compile-time check: the store satisfies the read contract consumed by
// the validation engine and the export projections.
var _ ir.SpecReader = (*Store)(nil)

// ListBlocks returns all IP blocks ordered by name.
// Returns an empty slice (not nil) if the store holds no blocks.
func (s *Store) ListBlocks(ctx context.Context) ([]ir.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, base_addr, variant
		FROM ip_block
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	blocks := []ir.Block{}
	for rows.Next() {
		var b ir.Block
		var variant sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &b.BaseAddr, &variant); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		if variant.Valid {
			b.Variant = &variant.String
		}
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}

// ListRegisters returns the registers of a block ordered by offset.
func (s *Store) ListRegisters(ctx context.Context, blockID int64) ([]ir.Register, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, block_id, name, offset, width
		FROM reg
		WHERE block_id = ?
		ORDER BY offset ASC
	`, blockID)
	if err != nil {
		return nil, fmt.Errorf("query registers: %w", err)
	}
	defer rows.Close()

	regs := []ir.Register{}
	for rows.Next() {
		var r ir.Register
		if err := rows.Scan(&r.ID, &r.BlockID, &r.Name, &r.Offset, &r.Width); err != nil {
			return nil, fmt.Errorf("scan register: %w", err)
		}
		regs = append(regs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registers: %w", err)
	}
	return regs, nil
}

// ListFields returns the fields of a register ordered by lsb.
func (s *Store) ListFields(ctx context.Context, regID int64) ([]ir.Field, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reg_id, name, lsb, msb, access, reset
		FROM field
		WHERE reg_id = ?
		ORDER BY lsb ASC
	`, regID)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	fields := []ir.Field{}
	for rows.Next() {
		var f ir.Field
		if err := rows.Scan(&f.ID, &f.RegID, &f.Name, &f.LSB, &f.MSB, &f.Access, &f.Reset); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return fields, nil
}

// ListEnumValues returns the enumerants of a field ordered by value.
func (s *Store) ListEnumValues(ctx context.Context, fieldID int64) ([]ir.EnumValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value
		FROM enum_value
		WHERE field_id = ?
		ORDER BY value ASC
	`, fieldID)
	if err != nil {
		return nil, fmt.Errorf("query enum values: %w", err)
	}
	defer rows.Close()

	enums := []ir.EnumValue{}
	for rows.Next() {
		var ev ir.EnumValue
		if err := rows.Scan(&ev.Name, &ev.Value); err != nil {
			return nil, fmt.Errorf("scan enum value: %w", err)
		}
		enums = append(enums, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enum values: %w", err)
	}
	return enums, nil
}

// ListConstraints returns the global constraint set in insertion order.
func (s *Store) ListConstraints(ctx context.Context) ([]ir.ConstraintDef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, applies_to, match_json, rule, severity
		FROM constraint_def
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query constraints: %w", err)
	}
	defer rows.Close()

	constraints := []ir.ConstraintDef{}
	for rows.Next() {
		var c ir.ConstraintDef
		var matchJSON string
		if err := rows.Scan(&c.Name, &c.AppliesTo, &matchJSON, &c.Rule, &c.Severity); err != nil {
			return nil, fmt.Errorf("scan constraint: %w", err)
		}
		match, err := unmarshalMatch(matchJSON)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", c.Name, err)
		}
		c.Match = match
		constraints = append(constraints, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate constraints: %w", err)
	}
	return constraints, nil
}

// LatestSpecVersion returns the most recent spec_version row, or ok=false
// when nothing has been ingested yet.
func (s *Store) LatestSpecVersion(ctx context.Context) (version, variant, runID string, ok bool, err error) {
	var v string
	var varNull, commitNull sql.NullString
	var run string
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, version, variant, git_commit
		FROM spec_version
		ORDER BY id DESC
		LIMIT 1
	`)
	if err := row.Scan(&run, &v, &varNull, &commitNull); err != nil {
		if err == sql.ErrNoRows {
			return "", "", "", false, nil
		}
		return "", "", "", false, fmt.Errorf("query spec version: %w", err)
	}
	return v, varNull.String, run, true, nil
}
