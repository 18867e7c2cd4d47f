package store

import (
	"context"
	"fmt"

	"github.com/roach88/synq/internal/memo"
)

// WriteCompletion appends a completion record.
//
// A second successful completion for the same identity hits the partial
// unique index and is silently ignored. Failed completions always append.
func (s *Store) WriteCompletion(ctx context.Context, c memo.Completion) error {
	result := string(c.Result)
	if result == "" {
		result = "{}"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completions
		(id, digest, scope, status, result, error, seq, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		c.ID,
		c.Digest,
		string(c.Scope),
		string(c.Status),
		result,
		c.Error,
		c.Seq,
		c.RunID,
	)
	if err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	return nil
}

// WriteSkip appends a skip record.
func (s *Store) WriteSkip(ctx context.Context, r memo.SkipRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skips
		(id, digest, scope, state, reason, seq, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.Digest,
		string(r.Scope),
		r.State.String(),
		r.Reason,
		r.Seq,
		r.RunID,
	)
	if err != nil {
		return fmt.Errorf("write skip: %w", err)
	}
	return nil
}
