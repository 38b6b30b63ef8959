// internal/store/runs.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rbh-core/hit"
	"rbh-core/rbh"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored resolve invocation.
type Run struct {
	ID            string
	StartedAt     time.Time
	Forward       string
	Reverse       string
	Policy        string
	Cutoff        string
	Bidirectional bool
	Accessions    int
	Pairs         int
}

// StoredPair is a pair row as persisted.
type StoredPair struct {
	RunID           string
	IDA             string
	IDB             string
	ForwardEValue   string
	ForwardBitScore float64
	ReverseEValue   string
	ReverseBitScore float64
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// SaveRun writes run and its pairs in one transaction. An empty run.ID is
// replaced by NewRunID; run.Pairs is set to len(pairs).
func (s *Store) SaveRun(ctx context.Context, run *Run, pairs []rbh.Pair) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Pairs = len(pairs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, started_at_unix_ms, forward, reverse, policy,
			evalue_cutoff, bidirectional, accessions, pairs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.StartedAt.UnixMilli(), run.Forward, run.Reverse, run.Policy,
		run.Cutoff, run.Bidirectional, run.Accessions, run.Pairs,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pairs (run_id, id_a, id_b, fwd_evalue, fwd_bitscore, rev_evalue, rev_bitscore)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare pairs: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, p.IDA, p.IDB,
			hit.FormatEValue(p.Forward.EValue), p.Forward.BitScore,
			hit.FormatEValue(p.Reverse.EValue), p.Reverse.BitScore,
		); err != nil {
			return fmt.Errorf("insert pair %s/%s: %w", p.IDA, p.IDB, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const runColumns = `run_id, started_at_unix_ms, forward, reverse, policy, evalue_cutoff, bidirectional, accessions, pairs`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var (
		r  Run
		ms int64
	)
	if err := sc.Scan(&r.ID, &ms, &r.Forward, &r.Reverse, &r.Policy, &r.Cutoff, &r.Bidirectional, &r.Accessions, &r.Pairs); err != nil {
		return Run{}, err
	}
	r.StartedAt = time.UnixMilli(ms).UTC()
	return r, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the newest runs first; limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY started_at_unix_ms DESC, run_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListPairs returns a run's pairs ordered by (id_a, id_b).
func (s *Store) ListPairs(ctx context.Context, runID string) ([]StoredPair, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, id_a, id_b, fwd_evalue, fwd_bitscore, rev_evalue, rev_bitscore
		FROM pairs WHERE run_id = ?
		ORDER BY id_a, id_b
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	return scanPairs(rows)
}

// FindPartner returns every stored pair mentioning accession on either side.
func (s *Store) FindPartner(ctx context.Context, accession string) ([]StoredPair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, id_a, id_b, fwd_evalue, fwd_bitscore, rev_evalue, rev_bitscore
		FROM pairs WHERE id_a = ? OR id_b = ?
		ORDER BY run_id, id_a, id_b
	`, accession, accession)
	if err != nil {
		return nil, fmt.Errorf("find partner: %w", err)
	}
	return scanPairs(rows)
}

func scanPairs(rows *sql.Rows) ([]StoredPair, error) {
	defer rows.Close()

	var out []StoredPair
	for rows.Next() {
		var p StoredPair
		if err := rows.Scan(&p.RunID, &p.IDA, &p.IDB, &p.ForwardEValue, &p.ForwardBitScore, &p.ReverseEValue, &p.ReverseBitScore); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
