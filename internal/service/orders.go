package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agromarket/internal/models"
	"agromarket/internal/repository"
)

func (s *Service) AdvanceOrderStatus(ctx context.Context, actor models.Actor, orderId string, status models.OrderStatus) (models.Order, error) {
	order, err := s.modifyOrder(ctx, actor, orderId, func(order *models.Order) error {
		if err := checkTransition(*order, actor, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.AdvanceOrderStatus: %w", err)
	}

	s.logger.Info("order status changed", zap.String("order", orderId), zap.String("status", string(status)))
	return order, nil
}

func (s *Service) ConfirmPayment(ctx context.Context, actor models.Actor, orderId string) (models.Order, error) {
	return s.AdvanceOrderStatus(ctx, actor, orderId, models.OrderProcessing)
}

func (s *Service) MarkShipped(ctx context.Context, actor models.Actor, orderId string) (models.Order, error) {
	return s.AdvanceOrderStatus(ctx, actor, orderId, models.OrderShipped)
}

func (s *Service) ConfirmReceipt(ctx context.Context, actor models.Actor, orderId string) (models.Order, error) {
	return s.AdvanceOrderStatus(ctx, actor, orderId, models.OrderCompleted)
}

// RecordShipping merges shipping fields into the order without touching its
// status. Allowed while the order is processing or shipped.
func (s *Service) RecordShipping(ctx context.Context, actor models.Actor, orderId string, details models.ShippingDetails) (models.Order, error) {
	if err := validateShipping(details); err != nil {
		return models.Order{}, fmt.Errorf("service.Service.RecordShipping: %w", err)
	}

	order, err := s.modifyOrder(ctx, actor, orderId, func(order *models.Order) error {
		if !actor.IsSeller() {
			return fmt.Errorf("%w: only the seller records shipping", models.ErrUnauthorized)
		}
		if order.Status != models.OrderProcessing && order.Status != models.OrderShipped {
			return fmt.Errorf("%w: order %s is %s", models.ErrInvalidTransition, order.Id, order.Status)
		}
		return mergeShipping(order, details)
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.RecordShipping: %w", err)
	}
	return order, nil
}

// AttachShippingDetails records shipping and moves a processing order to
// shipped in one step.
func (s *Service) AttachShippingDetails(ctx context.Context, actor models.Actor, orderId string, details models.ShippingDetails) (models.Order, error) {
	if err := validateShipping(details); err != nil {
		return models.Order{}, fmt.Errorf("service.Service.AttachShippingDetails: %w", err)
	}

	order, err := s.modifyOrder(ctx, actor, orderId, func(order *models.Order) error {
		if err := checkTransition(*order, actor, models.OrderShipped); err != nil {
			return err
		}
		if err := mergeShipping(order, details); err != nil {
			return err
		}
		order.Status = models.OrderShipped
		return nil
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.AttachShippingDetails: %w", err)
	}

	s.logger.Info("order shipped", zap.String("order", orderId), zap.String("carrier", order.ShippingDetails.Carrier))
	return order, nil
}

func (s *Service) PostMessage(ctx context.Context, actor models.Actor, orderId, text string) (models.Order, error) {
	if err := required("text", text); err != nil {
		return models.Order{}, fmt.Errorf("service.Service.PostMessage: %w", err)
	}

	order, err := s.modifyOrder(ctx, actor, orderId, func(order *models.Order) error {
		order.Messages = append(order.Messages, models.Message{
			Id:        s.newID(),
			SenderId:  actor.ID,
			Text:      text,
			Timestamp: s.now(),
		})
		return nil
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.PostMessage: %w", err)
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, actor models.Actor, orderId string) (models.Order, error) {
	if err := checkActor(actor); err != nil {
		return models.Order{}, fmt.Errorf("service.Service.GetOrder: %w", err)
	}

	var order models.Order
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		order, err = participantOrder(ctx, tx, actor, orderId)
		return err
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("service.Service.GetOrder: %w", err)
	}
	return order, nil
}

// ListOrders returns the orders the actor takes part in. The filter's buyer or
// seller id is replaced by the actor's own.
func (s *Service) ListOrders(ctx context.Context, actor models.Actor, filter models.OrderFilter) ([]models.Order, error) {
	if err := checkActor(actor); err != nil {
		return nil, fmt.Errorf("service.Service.ListOrders: %w", err)
	}
	if filter.Status != "" && !models.ValidOrderStatus(filter.Status) {
		return nil, fmt.Errorf("service.Service.ListOrders: %w: unknown status %s", models.ErrValidation, filter.Status)
	}

	var orders []models.Order
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		orders, err = tx.Orders(ctx, scopeOrders(actor, filter))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.ListOrders: %w", err)
	}
	return orders, nil
}

// modifyOrder loads an order the actor takes part in, applies fn and stores
// the result with a fresh UpdatedAt, all in one transaction.
func (s *Service) modifyOrder(ctx context.Context, actor models.Actor, orderId string, fn func(order *models.Order) error) (models.Order, error) {
	if err := checkActor(actor); err != nil {
		return models.Order{}, err
	}

	var order models.Order
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		var err error
		order, err = participantOrder(ctx, tx, actor, orderId)
		if err != nil {
			return err
		}

		if err = fn(&order); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func participantOrder(ctx context.Context, tx repository.Tx, actor models.Actor, orderId string) (models.Order, error) {
	order, ok, err := tx.Order(ctx, orderId)
	if err != nil {
		return order, err
	}
	if !ok {
		return order, models.ErrNoOrder
	}
	if !order.Participant(actor) {
		return order, fmt.Errorf("%w: not a participant of order %s", models.ErrUnauthorized, orderId)
	}
	return order, nil
}

func mergeShipping(order *models.Order, details models.ShippingDetails) error {
	var current models.ShippingDetails
	if order.ShippingDetails != nil {
		current = *order.ShippingDetails
	}
	merged := current.Merge(details)
	if err := validateShipping(merged); err != nil {
		return err
	}
	order.ShippingDetails = &merged
	return nil
}

func scopeOrders(actor models.Actor, filter models.OrderFilter) models.OrderFilter {
	if actor.IsBuyer() {
		filter.BuyerId = actor.ID
		filter.SellerId = ""
	} else {
		filter.SellerId = actor.ID
		filter.BuyerId = ""
	}
	return filter
}
