package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agromarket/internal/config"
	"agromarket/internal/models"
	"agromarket/internal/repository"
)

// StartupStore connects to TEST_POSTGRES_CONN, migrates up and registers a
// migrate down on cleanup. The test is skipped when the variable is unset.
// Other settings come from the POSTGRES_* environment.
func StartupStore(t *testing.T) *Store {
	t.Helper()

	conn := os.Getenv("TEST_POSTGRES_CONN")
	if conn == "" {
		t.Skip("TEST_POSTGRES_CONN is not set")
	}

	cfg, err := config.NewPostgresConfig()
	require.NoError(t, err)
	cfg.Conn = conn
	cfg.AutoMigrateUp = true
	cfg.AutoMigrateDown = true

	store, err := NewStore(context.Background(), nil, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestRFQRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := StartupStore(t)

	rfq := RandomRFQ()
	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		return tx.InsertRFQ(ctx, rfq)
	}))

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		got, ok, err := tx.RFQ(ctx, rfq.Id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, rfq.ProductName, got.ProductName)
		assert.Equal(t, rfq.QuantityKg, got.QuantityKg)
		assert.Equal(t, models.RFQOpen, got.Status)
		assert.WithinDuration(t, rfq.CreatedAt, got.CreatedAt, time.Millisecond)

		_, ok, err = tx.RFQ(ctx, gofakeit.UUID())
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestProductsSearch(t *testing.T) {
	ctx := context.Background()
	store := StartupStore(t)

	sellerId := gofakeit.UUID()
	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		for _, p := range []models.Product{
			{Id: gofakeit.UUID(), Name: "Medjool Dates", Grades: []string{"extra"}, PricePerKg: 150, SellerId: sellerId},
			{Id: gofakeit.UUID(), Name: "Deglet Nour", PricePerKg: 65, SellerId: sellerId},
		} {
			if err := tx.InsertProduct(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		products, err := tx.Products(ctx, models.ProductFilter{SellerId: sellerId, Search: "medjool"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, []string{"extra"}, products[0].Grades)

		products, err = tx.Products(ctx, models.ProductFilter{SellerId: sellerId})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Deglet Nour", products[0].Name)
		return nil
	}))
}

func TestDuplicateBidConstraint(t *testing.T) {
	ctx := context.Background()
	store := StartupStore(t)

	rfq := RandomRFQ()
	sellerId := gofakeit.UUID()
	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		if err := tx.InsertRFQ(ctx, rfq); err != nil {
			return err
		}
		return tx.InsertBid(ctx, RandomBid(rfq.Id, sellerId))
	}))

	err := store.Update(ctx, func(tx repository.Tx) error {
		return tx.InsertBid(ctx, RandomBid(rfq.Id, sellerId))
	})
	require.ErrorIs(t, err, models.ErrDuplicateBid)

	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		n, err := tx.DeleteBidsByRFQ(ctx, rfq.Id)
		assert.Equal(t, 1, n)
		return err
	}))
}

func TestOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := StartupStore(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	order := models.Order{
		Id:          gofakeit.UUID(),
		RFQId:       gofakeit.UUID(),
		BidId:       gofakeit.UUID(),
		BuyerId:     gofakeit.UUID(),
		SellerId:    gofakeit.UUID(),
		SellerCode:  "AKOUB03",
		ProductName: "Medjool Dates",
		QuantityKg:  5000,
		PricePerKg:  120,
		TotalPrice:  600000,
		Status:      models.OrderPendingPayment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		return tx.InsertOrder(ctx, order)
	}))

	arrival := now.Add(72 * time.Hour)
	order.Status = models.OrderShipped
	order.ShippingDetails = &models.ShippingDetails{Carrier: "DHL", TrackingNumber: "TRK-1", EstimatedArrival: &arrival}
	order.Messages = []models.Message{{Id: gofakeit.UUID(), SenderId: order.SellerId, Text: "on the way", Timestamp: now}}
	require.NoError(t, store.Update(ctx, func(tx repository.Tx) error {
		return tx.UpdateOrder(ctx, order)
	}))

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		got, ok, err := tx.Order(ctx, order.Id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.OrderShipped, got.Status)
		assert.Equal(t, 600000.0, got.TotalPrice)
		require.NotNil(t, got.ShippingDetails)
		assert.Equal(t, "DHL", got.ShippingDetails.Carrier)
		require.NotNil(t, got.ShippingDetails.EstimatedArrival)
		assert.True(t, arrival.Equal(*got.ShippingDetails.EstimatedArrival))
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "on the way", got.Messages[0].Text)
		return nil
	}))

	err := store.Update(ctx, func(tx repository.Tx) error {
		dup := order
		dup.Id = gofakeit.UUID()
		return tx.InsertOrder(ctx, dup)
	})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestUpdateRollback(t *testing.T) {
	ctx := context.Background()
	store := StartupStore(t)

	rfq := RandomRFQ()
	err := store.Update(ctx, func(tx repository.Tx) error {
		if err := tx.InsertRFQ(ctx, rfq); err != nil {
			return err
		}
		return tx.UpdateBid(ctx, models.Bid{Id: gofakeit.UUID(), Status: models.BidAccepted, PricePerKg: 1})
	})
	require.ErrorIs(t, err, models.ErrNoBid)

	var count int
	require.NoError(t, store.TestGetDB().GetContext(ctx, &count, "SELECT count(*) FROM rfqs WHERE id = $1", rfq.Id))
	assert.Zero(t, count)

	require.NoError(t, store.View(ctx, func(tx repository.Tx) error {
		_, ok, err := tx.RFQ(ctx, rfq.Id)
		require.NoError(t, err)
		assert.False(t, ok)

		return nil
	}))

	err = store.View(ctx, func(tx repository.Tx) error {
		return tx.InsertRFQ(ctx, rfq)
	})
	require.ErrorIs(t, err, repository.ErrReadOnly)
}

//// Service

func RandomRFQ() models.RFQ {
	return models.RFQ{
		Id:           gofakeit.UUID(),
		BuyerId:      gofakeit.UUID(),
		BuyerName:    gofakeit.Company(),
		ProductName:  gofakeit.ProductName(),
		QuantityKg:   float64(gofakeit.Number(100, 20000)),
		QualityGrade: gofakeit.Word(),
		Status:       models.RFQOpen,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func RandomBid(rfqId, sellerId string) models.Bid {
	return models.Bid{
		Id:         gofakeit.UUID(),
		RFQId:      rfqId,
		SellerId:   sellerId,
		SellerCode: gofakeit.LetterN(5),
		PricePerKg: float64(gofakeit.Number(10, 300)),
		Status:     models.BidPending,
		CreatedAt:  time.Now().UTC(),
	}
}
