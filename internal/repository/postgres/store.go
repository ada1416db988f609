// Package postgres is the PostgreSQL repository.Store. Each View or Update
// call maps to one SQL transaction; rows fetched one at a time inside Update
// are locked with SELECT ... FOR UPDATE so competing ledger operations on the
// same RFQ, bid or order serialize.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"agromarket/internal/config"
	"agromarket/internal/models"
	"agromarket/internal/repository"
)

const (
	uniqueViolation = "23505"

	bidsRFQSellerKey = "bids_rfq_seller_key"
	ordersBidKey     = "orders_bid_id_key"
)

type Store struct {
	db     *sqlx.DB
	cfg    *config.PostgresConfig
	logger *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// NewStore opens cfg.Conn unless db is given, and migrates up when
// cfg.AutoMigrateUp is set. A nil cfg is read from the environment.
func NewStore(ctx context.Context, db *sqlx.DB, cfg *config.PostgresConfig, logger *zap.Logger) (*Store, error) {
	var err error

	store := &Store{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}

	if store.cfg == nil {
		store.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("postgres.NewStore: %w", err)
		}
	}

	if store.db == nil {
		store.db, err = NewPostgresDB(ctx, store.cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres.NewStore: could not open postgres db: %w", err)
		}
	}

	if store.cfg.AutoMigrateUp {
		err = store.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return store, nil
}

func (s *Store) MigrateUp() error {
	s.logger.Info("migrating up")
	return MigrateUp(s.db.DB)
}

func (s *Store) MigrateDown() error {
	s.logger.Info("migrating down")
	return MigrateDown(s.db.DB)
}

func (s *Store) Close() error {
	var migErr error
	if s.cfg.AutoMigrateDown {
		migErr = s.MigrateDown()
	}

	err := s.db.Close()
	return errors.Join(migErr, err)
}

func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("postgres.Store.View: failed to start transaction: %w", err)
	}

	err = fn(&tx{tx: sqlTx, readOnly: true})
	if err != nil {
		return wrapRollbackErr(sqlTx, err)
	}

	err = sqlTx.Commit()
	if err != nil {
		return fmt.Errorf("postgres.Store.View: failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres.Store.Update: failed to start transaction: %w", err)
	}

	err = fn(&tx{tx: sqlTx})
	if err != nil {
		return wrapRollbackErr(sqlTx, err)
	}

	err = sqlTx.Commit()
	if err != nil {
		return fmt.Errorf("postgres.Store.Update: failed to commit transaction: %w", mapConstraintErr(err))
	}
	return nil
}

// TestGetDB exposes the connection to tests.
func (s *Store) TestGetDB() *sqlx.DB {
	return s.db
}

type tx struct {
	tx       *sqlx.Tx
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	return nil
}

// lockClause is appended to single row lookups of write transactions.
func (t *tx) lockClause() string {
	if t.readOnly {
		return ""
	}
	return " FOR UPDATE"
}

//// Service

func wrapRollbackErr(tx *sqlx.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

// mapConstraintErr translates unique violations of the ledger's invariants
// into the matching model errors.
func mapConstraintErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	switch pqErr.Constraint {
	case bidsRFQSellerKey:
		return fmt.Errorf("%w: %w", models.ErrDuplicateBid, err)
	case ordersBidKey:
		return fmt.Errorf("%w: bid already has an order: %w", models.ErrInvalidTransition, err)
	}
	return err
}

// conditions accumulates a WHERE clause with positional arguments.
type conditions struct {
	parts []string
	args  []interface{}
}

func (c *conditions) add(expr string, arg interface{}) {
	c.args = append(c.args, arg)
	c.parts = append(c.parts, strings.ReplaceAll(expr, "$$", "$"+strconv.Itoa(len(c.args))))
}

// search matches the name column case-insensitively or the id verbatim.
func (c *conditions) search(nameColumn, term string) {
	if term == "" {
		return
	}
	c.add("(strpos(lower("+nameColumn+"), lower($$)) > 0 OR strpos(id, $$) > 0)", term)
}

func (c *conditions) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
