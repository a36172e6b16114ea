package repository

import (
	"context"
	"log/slog"
	"strings"
)

// OpenResponseStore picks the backend from the DSN: postgres:// (or
// postgresql://) opens the pgx pool, anything else is treated as a
// sqlite file path. The returned closer releases the underlying
// connections.
func OpenResponseStore(ctx context.Context, cfg Config, logger *slog.Logger) (ResponseRepository, func(), error) {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		pool, err := OpenPool(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := HealthCheck(ctx, pool, cfg.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return NewPostgresResponseRepository(pool, logger), pool.Close, nil
	}

	repo, err := OpenSQLite(ctx, cfg.DSN, logger)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}
