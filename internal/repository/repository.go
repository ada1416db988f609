package repository

import (
	"context"
	"errors"

	"agromarket/internal/models"
)

// ErrReadOnly is returned by write methods of a Tx obtained from Store.View.
var ErrReadOnly = errors.New("repository: write in read-only transaction")

// Store is the storage behind the ledger. Every ledger operation runs inside
// exactly one View or Update call, which is what makes it atomic: either all
// writes made through the Tx become visible together, or none do.
type Store interface {
	// View runs fn against a consistent read-only view of all collections.
	View(ctx context.Context, fn func(tx Tx) error) error
	// Update runs fn in a read-write transaction. Writes are committed only if
	// fn returns nil.
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx gives access to the four collections inside a transaction. Lookups
// report a missing entity with ok == false rather than an error. In an Update
// transaction, single-entity lookups lock the row until commit.
type Tx interface {
	Product(ctx context.Context, id string) (models.Product, bool, error)
	Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	InsertProduct(ctx context.Context, p models.Product) error
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	RFQ(ctx context.Context, id string) (models.RFQ, bool, error)
	RFQs(ctx context.Context, filter models.RFQFilter) ([]models.RFQ, error)
	InsertRFQ(ctx context.Context, r models.RFQ) error
	UpdateRFQ(ctx context.Context, r models.RFQ) error
	DeleteRFQ(ctx context.Context, id string) error

	Bid(ctx context.Context, id string) (models.Bid, bool, error)
	Bids(ctx context.Context, filter models.BidFilter) ([]models.Bid, error)
	InsertBid(ctx context.Context, b models.Bid) error
	UpdateBid(ctx context.Context, b models.Bid) error
	// DeleteBidsByRFQ removes every bid referencing rfqId and returns how many
	// were removed.
	DeleteBidsByRFQ(ctx context.Context, rfqId string) (int, error)

	Order(ctx context.Context, id string) (models.Order, bool, error)
	Orders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	InsertOrder(ctx context.Context, o models.Order) error
	UpdateOrder(ctx context.Context, o models.Order) error
}
