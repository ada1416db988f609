package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"agromarket/internal/models"
)

const productColumns = `id, name, description, image_url, grades, price_per_kg, seller_id, seller_name`

type productRow struct {
	Id          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	ImageURL    string         `db:"image_url"`
	Grades      pq.StringArray `db:"grades"`
	PricePerKg  float64        `db:"price_per_kg"`
	SellerId    string         `db:"seller_id"`
	SellerName  string         `db:"seller_name"`
}

func (r productRow) model() models.Product {
	return models.Product{
		Id:          r.Id,
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Grades:      []string(r.Grades),
		PricePerKg:  r.PricePerKg,
		SellerId:    r.SellerId,
		SellerName:  r.SellerName,
	}
}

func (t *tx) Product(ctx context.Context, id string) (models.Product, bool, error) {
	var row productRow
	err := t.tx.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = $1`+t.lockClause(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, false, nil
	} else if err != nil {
		return models.Product{}, false, fmt.Errorf("postgres.tx.Product: %w", err)
	}
	return row.model(), true, nil
}

func (t *tx) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var c conditions
	if filter.SellerId != "" {
		c.add("seller_id = $$", filter.SellerId)
	}
	c.search("name", filter.Search)

	var rows []productRow
	err := t.tx.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products`+c.where()+` ORDER BY seq DESC`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.tx.Products: %w", err)
	}

	result := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.model())
	}
	return result, nil
}

func (t *tx) InsertProduct(ctx context.Context, p models.Product) error {
	if err := t.writable(); err != nil {
		return err
	}

	query := `
	INSERT INTO products (id, name, description, image_url, grades, price_per_kg, seller_id, seller_name)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := t.tx.ExecContext(ctx, query, p.Id, p.Name, p.Description, p.ImageURL, pq.Array(grades(p.Grades)), p.PricePerKg, p.SellerId, p.SellerName)
	if err != nil {
		return fmt.Errorf("postgres.tx.InsertProduct: %w", err)
	}
	return nil
}

func (t *tx) UpdateProduct(ctx context.Context, p models.Product) error {
	if err := t.writable(); err != nil {
		return err
	}

	query := `
	UPDATE products
	SET (name, description, image_url, grades, price_per_kg, seller_id, seller_name) = ($1, $2, $3, $4, $5, $6, $7)
	WHERE id = $8
	`
	res, err := t.tx.ExecContext(ctx, query, p.Name, p.Description, p.ImageURL, pq.Array(grades(p.Grades)), p.PricePerKg, p.SellerId, p.SellerName, p.Id)
	if err != nil {
		return fmt.Errorf("postgres.tx.UpdateProduct: %w", err)
	}
	if err = affected(res, models.ErrNoProduct); err != nil {
		return fmt.Errorf("postgres.tx.UpdateProduct: %w", err)
	}
	return nil
}

func (t *tx) DeleteProduct(ctx context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres.tx.DeleteProduct: %w", err)
	}
	return nil
}

// grades keeps NOT NULL satisfied for products without grades.
func grades(g []string) []string {
	if g == nil {
		return []string{}
	}
	return g
}
