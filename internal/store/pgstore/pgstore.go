package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/roach88/synq/internal/memo"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is the Postgres computation ledger.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ memo.Journal = (*Store)(nil)

// Open connects to dsn and applies pending migrations.
// If logger is nil, a discard logger is used.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, logger), nil
}

// New wraps an open, migrated database.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}
}

// Migrate runs all pending ledger migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exists reports whether a successful completion is recorded for id.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM completions WHERE id = $1 AND status = 'succeeded')`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return exists, nil
}

// WriteCompletion appends a completion record. A second successful
// completion for the same identity is silently ignored.
func (s *Store) WriteCompletion(ctx context.Context, c memo.Completion) error {
	result := string(c.Result)
	if result == "" {
		result = "{}"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (id, digest, scope, status, result, error, seq, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`,
		c.ID, c.Digest, string(c.Scope), string(c.Status), result, c.Error, c.Seq, c.RunID,
	)
	if err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("completion already recorded", slog.String("id", c.ID))
	}
	return nil
}

// WriteSkip appends a skip record.
func (s *Store) WriteSkip(ctx context.Context, r memo.SkipRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skips (id, digest, scope, state, reason, seq, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.Digest, string(r.Scope), r.State.String(), r.Reason, r.Seq, r.RunID,
	)
	if err != nil {
		return fmt.Errorf("write skip: %w", err)
	}
	return nil
}

// List returns completions and skips merged in seq order.
func (s *Store) List(ctx context.Context, opts memo.ListOptions) ([]memo.Entry, error) {
	var where []string
	var args []any
	if opts.Scope != "" {
		args = append(args, string(opts.Scope))
		where = append(where, fmt.Sprintf("scope = $%d", len(args)))
	}
	if opts.RunID != "" {
		args = append(args, opts.RunID)
		where = append(where, fmt.Sprintf("run_id = $%d", len(args)))
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
		) entries
		ORDER BY seq ASC, id COLLATE "C" ASC`, filter)
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	entries := []memo.Entry{}
	for rows.Next() {
		var (
			e                    memo.Entry
			scope, state, status string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &scope, &state, &status, &e.Detail, &e.RunID); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if e.State, err = memo.ParseState(state); err != nil {
			return nil, fmt.Errorf("scan ledger entry %q: %w", e.ID, err)
		}
		e.Scope = memo.Scope(scope)
		e.Status = memo.Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return entries, nil
}

// LastSeq returns the highest seq number used in the ledger.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT GREATEST(
			(SELECT COALESCE(MAX(seq), 0) FROM completions),
			(SELECT COALESCE(MAX(seq), 0) FROM skips)
		)`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return maxSeq, nil
}
