package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agromarket/internal/models"
)

const bidColumns = `id, rfq_id, seller_id, seller_code, price_per_kg, status, created_at`

func (t *tx) Bid(ctx context.Context, id string) (models.Bid, bool, error) {
	var bid models.Bid
	err := t.tx.GetContext(ctx, &bid, `SELECT `+bidColumns+` FROM bids WHERE id = $1`+t.lockClause(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return bid, false, nil
	} else if err != nil {
		return bid, false, fmt.Errorf("postgres.tx.Bid: %w", err)
	}
	return bid, true, nil
}

func (t *tx) Bids(ctx context.Context, filter models.BidFilter) ([]models.Bid, error) {
	var c conditions
	if filter.RFQId != "" {
		c.add("rfq_id = $$", filter.RFQId)
	}
	if filter.SellerId != "" {
		c.add("seller_id = $$", filter.SellerId)
	}
	if filter.Status != "" {
		c.add("status = $$", filter.Status)
	}

	result := []models.Bid{}
	err := t.tx.SelectContext(ctx, &result, `SELECT `+bidColumns+` FROM bids`+c.where()+` ORDER BY seq DESC`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.tx.Bids: %w", err)
	}
	return result, nil
}

func (t *tx) InsertBid(ctx context.Context, b models.Bid) error {
	if err := t.writable(); err != nil {
		return err
	}

	query := `
	INSERT INTO bids (` + bidColumns + `)
	VALUES
		(:id, :rfq_id, :seller_id, :seller_code, :price_per_kg, :status, :created_at)
	`
	_, err := t.tx.NamedExecContext(ctx, query, b)
	if err != nil {
		return fmt.Errorf("postgres.tx.InsertBid: %w", mapConstraintErr(err))
	}
	return nil
}

func (t *tx) UpdateBid(ctx context.Context, b models.Bid) error {
	if err := t.writable(); err != nil {
		return err
	}

	query := `
	UPDATE bids
	SET (seller_code, price_per_kg, status) = (:seller_code, :price_per_kg, :status)
	WHERE id = :id
	`
	res, err := t.tx.NamedExecContext(ctx, query, b)
	if err != nil {
		return fmt.Errorf("postgres.tx.UpdateBid: %w", err)
	}
	if err = affected(res, models.ErrNoBid); err != nil {
		return fmt.Errorf("postgres.tx.UpdateBid: %w", err)
	}
	return nil
}

func (t *tx) DeleteBidsByRFQ(ctx context.Context, rfqId string) (int, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx, `DELETE FROM bids WHERE rfq_id = $1`, rfqId)
	if err != nil {
		return 0, fmt.Errorf("postgres.tx.DeleteBidsByRFQ: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres.tx.DeleteBidsByRFQ: %w", err)
	}
	return int(n), nil
}
