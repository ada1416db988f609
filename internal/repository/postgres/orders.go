package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agromarket/internal/models"
)

const orderColumns = `id, rfq_id, bid_id, buyer_id, seller_id, seller_code, product_name, quantity_kg, price_per_kg,
	total_price, status, created_at, updated_at, shipping_details, messages, contract_url`

type orderRow struct {
	Id              string             `db:"id"`
	RFQId           string             `db:"rfq_id"`
	BidId           string             `db:"bid_id"`
	BuyerId         string             `db:"buyer_id"`
	SellerId        string             `db:"seller_id"`
	SellerCode      string             `db:"seller_code"`
	ProductName     string             `db:"product_name"`
	QuantityKg      float64            `db:"quantity_kg"`
	PricePerKg      float64            `db:"price_per_kg"`
	TotalPrice      float64            `db:"total_price"`
	Status          models.OrderStatus `db:"status"`
	CreatedAt       time.Time          `db:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at"`
	ShippingDetails sql.NullString     `db:"shipping_details"`
	Messages        string             `db:"messages"`
	ContractURL     string             `db:"contract_url"`
}

func newOrderRow(o models.Order) (orderRow, error) {
	row := orderRow{
		Id:          o.Id,
		RFQId:       o.RFQId,
		BidId:       o.BidId,
		BuyerId:     o.BuyerId,
		SellerId:    o.SellerId,
		SellerCode:  o.SellerCode,
		ProductName: o.ProductName,
		QuantityKg:  o.QuantityKg,
		PricePerKg:  o.PricePerKg,
		TotalPrice:  o.TotalPrice,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		ContractURL: o.ContractURL,
	}

	if o.ShippingDetails != nil {
		data, err := json.Marshal(o.ShippingDetails)
		if err != nil {
			return row, err
		}
		row.ShippingDetails = sql.NullString{String: string(data), Valid: true}
	}

	messages := o.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return row, err
	}
	row.Messages = string(data)
	return row, nil
}

func (r orderRow) model() (models.Order, error) {
	o := models.Order{
		Id:          r.Id,
		RFQId:       r.RFQId,
		BidId:       r.BidId,
		BuyerId:     r.BuyerId,
		SellerId:    r.SellerId,
		SellerCode:  r.SellerCode,
		ProductName: r.ProductName,
		QuantityKg:  r.QuantityKg,
		PricePerKg:  r.PricePerKg,
		TotalPrice:  r.TotalPrice,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ContractURL: r.ContractURL,
		Messages:    []models.Message{},
	}

	if r.ShippingDetails.Valid {
		o.ShippingDetails = &models.ShippingDetails{}
		if err := json.Unmarshal([]byte(r.ShippingDetails.String), o.ShippingDetails); err != nil {
			return o, fmt.Errorf("shipping_details: %w", err)
		}
	}
	if len(r.Messages) > 0 {
		if err := json.Unmarshal([]byte(r.Messages), &o.Messages); err != nil {
			return o, fmt.Errorf("messages: %w", err)
		}
	}
	return o, nil
}

func (t *tx) Order(ctx context.Context, id string) (models.Order, bool, error) {
	var row orderRow
	err := t.tx.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE id = $1`+t.lockClause(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, false, nil
	} else if err != nil {
		return models.Order{}, false, fmt.Errorf("postgres.tx.Order: %w", err)
	}

	o, err := row.model()
	if err != nil {
		return o, false, fmt.Errorf("postgres.tx.Order: %w", err)
	}
	return o, true, nil
}

func (t *tx) Orders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var c conditions
	if filter.BuyerId != "" {
		c.add("buyer_id = $$", filter.BuyerId)
	}
	if filter.SellerId != "" {
		c.add("seller_id = $$", filter.SellerId)
	}
	if filter.Status != "" {
		c.add("status = $$", filter.Status)
	}
	c.search("product_name", filter.Search)

	var rows []orderRow
	err := t.tx.SelectContext(ctx, &rows, `SELECT `+orderColumns+` FROM orders`+c.where()+` ORDER BY seq DESC`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.tx.Orders: %w", err)
	}

	result := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.model()
		if err != nil {
			return nil, fmt.Errorf("postgres.tx.Orders: order %s: %w", row.Id, err)
		}
		result = append(result, o)
	}
	return result, nil
}

func (t *tx) InsertOrder(ctx context.Context, o models.Order) error {
	if err := t.writable(); err != nil {
		return err
	}

	row, err := newOrderRow(o)
	if err != nil {
		return fmt.Errorf("postgres.tx.InsertOrder: %w", err)
	}

	query := `
	INSERT INTO orders (` + orderColumns + `)
	VALUES
		(:id, :rfq_id, :bid_id, :buyer_id, :seller_id, :seller_code, :product_name, :quantity_kg, :price_per_kg,
		:total_price, :status, :created_at, :updated_at, :shipping_details, :messages, :contract_url)
	`
	_, err = t.tx.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("postgres.tx.InsertOrder: %w", mapConstraintErr(err))
	}
	return nil
}

// UpdateOrder writes the mutable part of an order. The snapshot columns
// copied at acceptance are never updated.
func (t *tx) UpdateOrder(ctx context.Context, o models.Order) error {
	if err := t.writable(); err != nil {
		return err
	}

	row, err := newOrderRow(o)
	if err != nil {
		return fmt.Errorf("postgres.tx.UpdateOrder: %w", err)
	}

	query := `
	UPDATE orders
	SET (status, updated_at, shipping_details, messages, contract_url) = (:status, :updated_at, :shipping_details, :messages, :contract_url)
	WHERE id = :id
	`
	res, err := t.tx.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("postgres.tx.UpdateOrder: %w", err)
	}
	if err = affected(res, models.ErrNoOrder); err != nil {
		return fmt.Errorf("postgres.tx.UpdateOrder: %w", err)
	}
	return nil
}
