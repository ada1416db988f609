package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agromarket/internal/models"
	"agromarket/internal/repository"
)

// CreateRFQ stores a new open RFQ for the acting buyer. Id, status, buyer and
// creation time in the input are ignored.
func (s *Service) CreateRFQ(ctx context.Context, actor models.Actor, rfq models.RFQ) (models.RFQ, error) {
	if err := requireRole(actor, models.RoleBuyer); err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.CreateRFQ: %w", err)
	}
	if err := validateRFQ(rfq); err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.CreateRFQ: %w", err)
	}

	rfq.Id = s.newID()
	rfq.BuyerId = actor.ID
	rfq.BuyerName = actor.Name
	rfq.Status = models.RFQOpen
	rfq.CreatedAt = s.now()

	err := s.store.Update(ctx, func(tx repository.Tx) error {
		return tx.InsertRFQ(ctx, rfq)
	})
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.CreateRFQ: %w", err)
	}

	s.logger.Debug("rfq created", zap.String("rfq", rfq.Id), zap.String("buyer", actor.ID))
	return rfq, nil
}

// UpdateRFQ replaces the editable fields of an RFQ. Status, buyer and creation
// time always come from the stored record.
func (s *Service) UpdateRFQ(ctx context.Context, actor models.Actor, rfq models.RFQ) (models.RFQ, error) {
	if err := requireRole(actor, models.RoleBuyer); err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.UpdateRFQ: %w", err)
	}
	if err := validateRFQ(rfq); err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.UpdateRFQ: %w", err)
	}

	err := s.store.Update(ctx, func(tx repository.Tx) error {
		stored, err := ownedRFQ(ctx, tx, actor, rfq.Id)
		if err != nil {
			return err
		}

		rfq.BuyerId = stored.BuyerId
		rfq.BuyerName = stored.BuyerName
		rfq.Status = stored.Status
		rfq.CreatedAt = stored.CreatedAt
		return tx.UpdateRFQ(ctx, rfq)
	})
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.UpdateRFQ: %w", err)
	}

	return rfq, nil
}

// DeleteRFQ removes the RFQ together with every bid placed on it.
func (s *Service) DeleteRFQ(ctx context.Context, actor models.Actor, rfqId string) error {
	if err := requireRole(actor, models.RoleBuyer); err != nil {
		return fmt.Errorf("service.Service.DeleteRFQ: %w", err)
	}

	var removed int
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		if _, err := ownedRFQ(ctx, tx, actor, rfqId); err != nil {
			return err
		}

		var err error
		removed, err = tx.DeleteBidsByRFQ(ctx, rfqId)
		if err != nil {
			return err
		}
		return tx.DeleteRFQ(ctx, rfqId)
	})
	if err != nil {
		return fmt.Errorf("service.Service.DeleteRFQ: %w", err)
	}

	s.logger.Info("rfq deleted", zap.String("rfq", rfqId), zap.Int("bidsRemoved", removed))
	return nil
}

func (s *Service) GetRFQ(ctx context.Context, actor models.Actor, rfqId string) (models.RFQ, error) {
	if err := checkActor(actor); err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.GetRFQ: %w", err)
	}

	var rfq models.RFQ
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var ok bool
		var err error
		rfq, ok, err = tx.RFQ(ctx, rfqId)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNoRFQ
		}
		return nil
	})
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.GetRFQ: %w", err)
	}
	return rfq, nil
}

func (s *Service) ListRFQs(ctx context.Context, actor models.Actor, filter models.RFQFilter) ([]models.RFQ, error) {
	if err := checkActor(actor); err != nil {
		return nil, fmt.Errorf("service.Service.ListRFQs: %w", err)
	}
	if filter.Status != "" && !models.ValidRFQStatus(filter.Status) {
		return nil, fmt.Errorf("service.Service.ListRFQs: %w: unknown status %s", models.ErrValidation, filter.Status)
	}

	var rfqs []models.RFQ
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		rfqs, err = tx.RFQs(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListRFQs: %w", err)
	}
	return rfqs, nil
}

func ownedRFQ(ctx context.Context, tx repository.Tx, actor models.Actor, rfqId string) (models.RFQ, error) {
	rfq, ok, err := tx.RFQ(ctx, rfqId)
	if err != nil {
		return rfq, err
	}
	if !ok {
		return rfq, models.ErrNoRFQ
	}
	if rfq.BuyerId != actor.ID {
		return rfq, fmt.Errorf("%w: rfq %s belongs to another buyer", models.ErrUnauthorized, rfqId)
	}
	return rfq, nil
}
