package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/mdxmend/internal/apperr"
	"github.com/starford/mdxmend/internal/models"
)

const defaultLimit = 20

// RecordRun stores run and its outcomes in one transaction and sets run.ID.
func (db *DB) RecordRun(ctx context.Context, run *models.Run) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (dir, dry_run, findings, changed, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.Dir, run.DryRun, run.Findings, run.Changed, run.Failed, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("ledger: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ledger: run id: %w", err)
	}

	if len(run.Outcomes) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO outcomes (run_id, seq, pass, document, action, checksum_before, checksum_after, title, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("ledger: prepare outcome insert: %w", err)
		}
		defer stmt.Close()
		for i, o := range run.Outcomes {
			if _, err := stmt.ExecContext(ctx, id, i, o.Pass, o.Document, string(o.Action),
				o.ChecksumBefore, o.ChecksumAfter, o.Title, o.Error); err != nil {
				return fmt.Errorf("ledger: insert outcome: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit: %w", err)
	}
	run.ID = id
	return nil
}

// ListRuns returns the most recent runs, newest first, without outcomes.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, dir, dry_run, findings, changed, failed, started_at, finished_at
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	defer rows.Close()

	var out []models.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetRun returns one run with its outcomes in recorded order.
func (db *DB) GetRun(ctx context.Context, id int64) (*models.Run, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, dir, dry_run, findings, changed, failed, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger: run %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT pass, document, action, checksum_before, checksum_after, title, error
		FROM outcomes WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("ledger: outcomes: %w", err)
	}
	defer rows.Close()
	r.Outcomes, err = scanOutcomes(rows)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DocumentHistory returns the most recent outcomes recorded for one
// document across all runs, newest first.
func (db *DB) DocumentHistory(ctx context.Context, document string, limit int) ([]models.Outcome, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT pass, document, action, checksum_before, checksum_after, title, error
		FROM outcomes WHERE document = ?
		ORDER BY run_id DESC, seq DESC
		LIMIT ?
	`, document, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: document history: %w", err)
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var r models.Run
	if err := s.Scan(&r.ID, &r.Dir, &r.DryRun, &r.Findings, &r.Changed, &r.Failed, &r.StartedAt, &r.FinishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("ledger: scan run: %w", err)
	}
	return &r, nil
}

func scanOutcomes(rows *sql.Rows) ([]models.Outcome, error) {
	var out []models.Outcome
	for rows.Next() {
		var (
			o      models.Outcome
			action string
		)
		if err := rows.Scan(&o.Pass, &o.Document, &action, &o.ChecksumBefore, &o.ChecksumAfter, &o.Title, &o.Error); err != nil {
			return nil, fmt.Errorf("ledger: scan outcome: %w", err)
		}
		o.Action = models.Action(action)
		out = append(out, o)
	}
	return out, rows.Err()
}
