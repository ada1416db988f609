package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"agromarket/internal/config"
)

func NewPostgresDB(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*sqlx.DB, error) {
	logger.Info("connecting to postgres", zap.Int("maxOpenConns", cfg.MaxOpenConns))
	db, err := sqlx.Open("postgres", cfg.Conn)
	if err != nil {
		return nil, fmt.Errorf("postgres.NewPostgresDB: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.NewPostgresDB: %w", err)
	}

	return db, nil
}
