package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agromarket/internal/models"
)

const rfqColumns = `id, buyer_id, buyer_name, product_name, quantity_kg, quality_grade, status, created_at`

func (t *tx) RFQ(ctx context.Context, id string) (models.RFQ, bool, error) {
	var rfq models.RFQ
	err := t.tx.GetContext(ctx, &rfq, `SELECT `+rfqColumns+` FROM rfqs WHERE id = $1`+t.lockClause(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return rfq, false, nil
	} else if err != nil {
		return rfq, false, fmt.Errorf("postgres.tx.RFQ: %w", err)
	}
	return rfq, true, nil
}

func (t *tx) RFQs(ctx context.Context, filter models.RFQFilter) ([]models.RFQ, error) {
	var c conditions
	if filter.BuyerId != "" {
		c.add("buyer_id = $$", filter.BuyerId)
	}
	if filter.Status != "" {
		c.add("status = $$", filter.Status)
	}
	c.search("product_name", filter.Search)

	result := []models.RFQ{}
	err := t.tx.SelectContext(ctx, &result, `SELECT `+rfqColumns+` FROM rfqs`+c.where()+` ORDER BY seq DESC`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.tx.RFQs: %w", err)
	}
	return result, nil
}

func (t *tx) InsertRFQ(ctx context.Context, r models.RFQ) error {
	if err := t.writable(); err != nil {
		return err
	}

	query := `
	INSERT INTO rfqs (` + rfqColumns + `)
	VALUES
		(:id, :buyer_id, :buyer_name, :product_name, :quantity_kg, :quality_grade, :status, :created_at)
	`
	_, err := t.tx.NamedExecContext(ctx, query, r)
	if err != nil {
		return fmt.Errorf("postgres.tx.InsertRFQ: %w", err)
	}
	return nil
}

func (t *tx) UpdateRFQ(ctx context.Context, r models.RFQ) error {
	if err := t.writable(); err != nil {
		return err
	}

	query := `
	UPDATE rfqs
	SET (buyer_id, buyer_name, product_name, quantity_kg, quality_grade, status) = (:buyer_id, :buyer_name, :product_name, :quantity_kg, :quality_grade, :status)
	WHERE id = :id
	`
	res, err := t.tx.NamedExecContext(ctx, query, r)
	if err != nil {
		return fmt.Errorf("postgres.tx.UpdateRFQ: %w", err)
	}
	if err = affected(res, models.ErrNoRFQ); err != nil {
		return fmt.Errorf("postgres.tx.UpdateRFQ: %w", err)
	}
	return nil
}

func (t *tx) DeleteRFQ(ctx context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(ctx, `DELETE FROM rfqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres.tx.DeleteRFQ: %w", err)
	}
	return nil
}
