package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// ApplyBundle ingests a loaded spec bundle in one transaction.
//
// For every block in the bundle: upsert the block row keyed on
// (name, variant), cascade-delete its existing register set, insert the
// new one. Then the global constraint list is wholesale-replaced and a
// spec_version provenance row is written. Commit-or-nothing: a failed
// ingest leaves the prior store state fully intact.
//
// Returns the run ID recorded in the spec_version row.
func (s *Store) ApplyBundle(ctx context.Context, bundle ir.Bundle, gitCommit string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("apply bundle: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	variant := nullableString(bundle.VariantName)

	for _, blk := range bundle.Doc.IPBlocks {
		blockID, err := upsertBlockTx(ctx, tx, blk.Name, blk.BaseAddr, variant)
		if err != nil {
			return "", fmt.Errorf("apply bundle: block %q: %w", blk.Name, err)
		}
		if err := replaceRegistersTx(ctx, tx, blockID, blk.Registers); err != nil {
			return "", fmt.Errorf("apply bundle: block %q: %w", blk.Name, err)
		}
	}

	if err := replaceConstraintsTx(ctx, tx, bundle.Doc.Constraints); err != nil {
		return "", fmt.Errorf("apply bundle: %w", err)
	}

	runID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO spec_version (run_id, version, variant, git_commit)
		VALUES (?, ?, ?, ?)
	`, runID, bundle.SpecVersion, variant, nullableString(gitCommit))
	if err != nil {
		return "", fmt.Errorf("apply bundle: write spec version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("apply bundle: commit: %w", err)
	}

	return runID, nil
}

// UpsertBlock inserts or updates a block row keyed on (name, variant).
// Idempotent: a second call with the same pair updates base_addr and
// returns the existing ID.
func (s *Store) UpsertBlock(ctx context.Context, name string, baseAddr int64, variant *string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("upsert block: begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := upsertBlockTx(ctx, tx, name, baseAddr, variant)
	if err != nil {
		return 0, fmt.Errorf("upsert block %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert block: commit: %w", err)
	}
	return id, nil
}

// ReplaceRegisters deletes all registers under blockID (cascading to
// fields and enum values) and inserts the given set, as one transaction.
func (s *Store) ReplaceRegisters(ctx context.Context, blockID int64, regs []ir.RegisterDef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace registers: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceRegistersTx(ctx, tx, blockID, regs); err != nil {
		return fmt.Errorf("replace registers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace registers: commit: %w", err)
	}
	return nil
}

// ReplaceConstraints deletes and reinserts the global constraint set, as
// one transaction.
func (s *Store) ReplaceConstraints(ctx context.Context, constraints []ir.ConstraintDef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace constraints: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceConstraintsTx(ctx, tx, constraints); err != nil {
		return fmt.Errorf("replace constraints: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace constraints: commit: %w", err)
	}
	return nil
}

func upsertBlockTx(ctx context.Context, tx *sql.Tx, name string, baseAddr int64, variant *string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM ip_block
		WHERE name = ? AND ifnull(variant, '') = ifnull(?, '')
	`, name, variant).Scan(&id)

	switch {
	case err == nil:
		// Spec may have moved the block; keep base_addr current.
		if _, err := tx.ExecContext(ctx, `UPDATE ip_block SET base_addr = ? WHERE id = ?`, baseAddr, id); err != nil {
			return 0, fmt.Errorf("update base_addr: %w", err)
		}
		return id, nil
	case err == sql.ErrNoRows:
		result, err := tx.ExecContext(ctx, `
			INSERT INTO ip_block (name, base_addr, variant) VALUES (?, ?, ?)
		`, name, baseAddr, variant)
		if err != nil {
			return 0, fmt.Errorf("insert block: %w", err)
		}
		return result.LastInsertId()
	default:
		return 0, fmt.Errorf("select block: %w", err)
	}
}

func replaceRegistersTx(ctx context.Context, tx *sql.Tx, blockID int64, regs []ir.RegisterDef) error {
	// Cascades to field and enum_value rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM reg WHERE block_id = ?`, blockID); err != nil {
		return fmt.Errorf("delete registers: %w", err)
	}

	regStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reg (block_id, name, offset, width) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare register insert: %w", err)
	}
	defer regStmt.Close()

	fieldStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO field (reg_id, name, lsb, msb, access, reset) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare field insert: %w", err)
	}
	defer fieldStmt.Close()

	enumStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO enum_value (field_id, name, value) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare enum insert: %w", err)
	}
	defer enumStmt.Close()

	for _, r := range regs {
		result, err := regStmt.ExecContext(ctx, blockID, r.Name, r.Offset, r.Width)
		if err != nil {
			return fmt.Errorf("insert register %q: %w", r.Name, err)
		}
		regID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("register %q id: %w", r.Name, err)
		}

		for _, f := range r.Fields {
			result, err := fieldStmt.ExecContext(ctx, regID, f.Name, f.LSB, f.MSB, f.Access, f.Reset)
			if err != nil {
				return fmt.Errorf("insert field %s.%s: %w", r.Name, f.Name, err)
			}
			fieldID, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("field %s.%s id: %w", r.Name, f.Name, err)
			}

			for _, ev := range f.Enum {
				if _, err := enumStmt.ExecContext(ctx, fieldID, ev.Name, ev.Value); err != nil {
					return fmt.Errorf("insert enum %s.%s.%s: %w", r.Name, f.Name, ev.Name, err)
				}
			}
		}
	}

	return nil
}

func replaceConstraintsTx(ctx context.Context, tx *sql.Tx, constraints []ir.ConstraintDef) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM constraint_def`); err != nil {
		return fmt.Errorf("delete constraints: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO constraint_def (name, applies_to, match_json, rule, severity)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare constraint insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range constraints {
		matchJSON, err := marshalMatch(c.Match)
		if err != nil {
			return fmt.Errorf("constraint %q: %w", c.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, c.Name, c.AppliesTo, matchJSON, c.Rule, c.Severity); err != nil {
			return fmt.Errorf("insert constraint %q: %w", c.Name, err)
		}
	}

	return nil
}

// nullableString maps "" to NULL for optional columns.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
