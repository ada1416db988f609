package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agromarket/internal/models"
	"agromarket/internal/repository"
)

// SubmitBid places a pending bid of the acting seller on an open RFQ. Only
// RFQId and PricePerKg are taken from the input.
func (s *Service) SubmitBid(ctx context.Context, actor models.Actor, bid models.Bid) (models.Bid, error) {
	if err := requireRole(actor, models.RoleSeller); err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}
	if err := required("rfqId", bid.RFQId); err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}
	if err := positive("pricePerKg", bid.PricePerKg); err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	bid = models.Bid{
		Id:         s.newID(),
		RFQId:      bid.RFQId,
		SellerId:   actor.ID,
		SellerCode: actor.Code,
		PricePerKg: bid.PricePerKg,
		Status:     models.BidPending,
		CreatedAt:  s.now(),
	}

	err := s.store.Update(ctx, func(tx repository.Tx) error {
		rfq, ok, err := tx.RFQ(ctx, bid.RFQId)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNoRFQ
		}

		existing, err := tx.Bids(ctx, models.BidFilter{RFQId: rfq.Id, SellerId: actor.ID})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return models.ErrDuplicateBid
		}

		if rfq.Status != models.RFQOpen {
			return models.ErrRFQClosed
		}

		return tx.InsertBid(ctx, bid)
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	s.logger.Debug("bid submitted", zap.String("bid", bid.Id), zap.String("rfq", bid.RFQId), zap.String("seller", actor.ID))
	return bid, nil
}

// AcceptBid turns a pending bid into an order. Creating the order, accepting
// the bid and closing the RFQ happen in one transaction. Other bids on the
// RFQ are left pending.
func (s *Service) AcceptBid(ctx context.Context, actor models.Actor, bidId string) (models.Order, error) {
	if err := requireRole(actor, models.RoleBuyer); err != nil {
		return models.Order{}, fmt.Errorf("service.Service.AcceptBid: %w", err)
	}

	var order models.Order
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		bid, ok, err := tx.Bid(ctx, bidId)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNoBid
		}

		rfq, err := ownedRFQ(ctx, tx, actor, bid.RFQId)
		if err != nil {
			return err
		}

		// check status
		if bid.Status != models.BidPending {
			return models.ErrBidFinalized
		}
		if rfq.Status != models.RFQOpen {
			return models.ErrRFQClosed
		}

		now := s.now()
		orderId := s.newID()
		order = models.Order{
			Id:          orderId,
			RFQId:       rfq.Id,
			BidId:       bid.Id,
			BuyerId:     rfq.BuyerId,
			SellerId:    bid.SellerId,
			SellerCode:  bid.SellerCode,
			ProductName: rfq.ProductName,
			QuantityKg:  rfq.QuantityKg,
			PricePerKg:  bid.PricePerKg,
			TotalPrice:  rfq.QuantityKg * bid.PricePerKg,
			Status:      models.OrderPendingPayment,
			CreatedAt:   now,
			UpdatedAt:   now,
			Messages:    []models.Message{},
			ContractURL: models.ContractURL(orderId),
		}
		if err = tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		bid.Status = models.BidAccepted
		if err = tx.UpdateBid(ctx, bid); err != nil {
			return err
		}

		rfq.Status = models.RFQClosed
		return tx.UpdateRFQ(ctx, rfq)
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.AcceptBid: %w", err)
	}

	s.logger.Info("bid accepted",
		zap.String("bid", order.BidId),
		zap.String("rfq", order.RFQId),
		zap.String("order", order.Id),
		zap.Float64("totalPrice", order.TotalPrice),
	)
	return order, nil
}

func (s *Service) GetBid(ctx context.Context, actor models.Actor, bidId string) (models.Bid, error) {
	if err := checkActor(actor); err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.GetBid: %w", err)
	}

	var bid models.Bid
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var ok bool
		var err error
		bid, ok, err = tx.Bid(ctx, bidId)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNoBid
		}
		return nil
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.GetBid: %w", err)
	}
	return bid, nil
}

func (s *Service) ListBids(ctx context.Context, actor models.Actor, filter models.BidFilter) ([]models.Bid, error) {
	if err := checkActor(actor); err != nil {
		return nil, fmt.Errorf("service.Service.ListBids: %w", err)
	}
	if filter.Status != "" && !models.ValidBidStatus(filter.Status) {
		return nil, fmt.Errorf("service.Service.ListBids: %w: unknown status %s", models.ErrValidation, filter.Status)
	}

	var bids []models.Bid
	err := s.store.View(ctx, func(tx repository.Tx) error {
		if filter.RFQId != "" {
			_, ok, err := tx.RFQ(ctx, filter.RFQId)
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrNoRFQ
			}
		}

		var err error
		bids, err = tx.Bids(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListBids: %w", err)
	}
	return bids, nil
}
