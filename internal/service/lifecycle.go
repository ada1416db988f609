package service

import (
	"fmt"

	"agromarket/internal/models"
)

type transition struct {
	from models.OrderStatus
	to   models.OrderStatus
}

// transitions lists every reachable order status change and the side allowed
// to trigger it. Delivered and Disputed have no entry.
var transitions = map[transition]models.Role{
	{models.OrderPendingPayment, models.OrderProcessing}: models.RoleBuyer,
	{models.OrderProcessing, models.OrderShipped}:        models.RoleSeller,
	{models.OrderShipped, models.OrderCompleted}:         models.RoleBuyer,
}

// checkTransition expects the actor to already be a participant of the order.
func checkTransition(order models.Order, actor models.Actor, to models.OrderStatus) error {
	if !models.ValidOrderStatus(to) {
		return fmt.Errorf("%w: unknown order status %q", models.ErrValidation, to)
	}

	side, ok := transitions[transition{from: order.Status, to: to}]
	if !ok {
		return fmt.Errorf("%w: order %s cannot move from %s to %s", models.ErrInvalidTransition, order.Id, order.Status, to)
	}
	if side != actor.Role {
		return fmt.Errorf("%w: only the %s can move an order from %s to %s", models.ErrUnauthorized, side, order.Status, to)
	}
	return nil
}
