package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/synq/internal/memo"
)

// Exists reports whether a successful completion is recorded for id.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM completions
		WHERE id = ? AND status = 'succeeded'
	`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return count > 0, nil
}

// ReadResult returns the canonical JSON result of the successful completion
// for id. Returns sql.ErrNoRows if there is none.
func (s *Store) ReadResult(ctx context.Context, id string) ([]byte, error) {
	var result string
	err := s.db.QueryRowContext(ctx, `
		SELECT result FROM completions
		WHERE id = ? AND status = 'succeeded'
	`, id).Scan(&result)
	if err != nil {
		return nil, err
	}
	return []byte(result), nil
}

// List returns completions and skips merged in seq order.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) List(ctx context.Context, opts memo.ListOptions) ([]memo.Entry, error) {
	var where []string
	var args []any
	if opts.Scope != "" {
		where = append(where, "scope = ?")
		args = append(args, string(opts.Scope))
	}
	if opts.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, opts.RunID)
	}
	filter := ""
	if len(where) > 0 {
		filter = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT seq, id, scope, state, status, detail, run_id FROM (
			SELECT seq, id, scope, 'completed' AS state, status, error AS detail, run_id FROM completions %[1]s
			UNION ALL
			SELECT seq, id, scope, state, '' AS status, reason AS detail, run_id FROM skips %[1]s
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, filter)
	args = append(args, args...)
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	entries := []memo.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (memo.Entry, error) {
	var (
		e                    memo.Entry
		scope, state, status string
	)
	if err := rows.Scan(&e.Seq, &e.ID, &scope, &state, &status, &e.Detail, &e.RunID); err != nil {
		return memo.Entry{}, fmt.Errorf("scan ledger entry: %w", err)
	}
	st, err := memo.ParseState(state)
	if err != nil {
		return memo.Entry{}, fmt.Errorf("scan ledger entry %q: %w", e.ID, err)
	}
	e.Scope = memo.Scope(scope)
	e.State = st
	e.Status = memo.Status(status)
	return e, nil
}

// LastSeq returns the highest seq number used in the ledger.
// Used to resume the logical clock from the correct position.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			(SELECT COALESCE(MAX(seq), 0) FROM completions),
			(SELECT COALESCE(MAX(seq), 0) FROM skips)
		)
	`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return maxSeq, nil
}
