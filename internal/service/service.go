// Package service is the marketplace ledger. It owns the product, RFQ, bid and
// order collections through a repository.Store and enforces every state
// transition and ownership rule. Each mutating operation runs inside exactly
// one Store.Update, so it either applies completely or not at all.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agromarket/internal/models"
	"agromarket/internal/repository"
)

type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func NewService(store repository.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns all four collections as seen by one read transaction.
// Orders are limited to the ones the actor takes part in.
func (s *Service) Snapshot(ctx context.Context, actor models.Actor) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := checkActor(actor); err != nil {
		return snap, fmt.Errorf("service.Service.Snapshot: %w", err)
	}

	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		if snap.Products, err = tx.Products(ctx, models.ProductFilter{}); err != nil {
			return err
		}
		if snap.RFQs, err = tx.RFQs(ctx, models.RFQFilter{}); err != nil {
			return err
		}
		if snap.Bids, err = tx.Bids(ctx, models.BidFilter{}); err != nil {
			return err
		}
		snap.Orders, err = tx.Orders(ctx, scopeOrders(actor, models.OrderFilter{}))
		return err
	})
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("service.Service.Snapshot: %w", err)
	}
	return snap, nil
}
