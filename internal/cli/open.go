package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/synq/internal/artifact"
	"github.com/roach88/synq/internal/config"
	"github.com/roach88/synq/internal/memo"
	"github.com/roach88/synq/internal/store"
	"github.com/roach88/synq/internal/store/pgstore"
)

// openLedger opens the configured ledger.
func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (memo.Journal, error) {
	switch cfg.Ledger.Driver {
	case "sqlite":
		st, err := store.Open(cfg.Ledger.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := pgstore.Open(ctx, cfg.Ledger.DSN, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Ledger.Driver)
	}
}

// openArtifacts opens the configured artifact store.
func openArtifacts(cfg *config.Config, logger *slog.Logger) (artifact.Store, error) {
	switch cfg.Artifacts.Backend {
	case "fs":
		return artifact.NewFSStore(cfg.Artifacts.Dir), nil
	case "minio":
		st, err := artifact.NewMinioStore(cfg.Artifacts.Minio, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Artifacts.Backend)
	}
}
