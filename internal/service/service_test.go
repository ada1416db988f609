package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"agromarket/internal/models"
	"agromarket/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	seller := RandomSeller()

	product, err := svc.CreateProduct(ctx, seller, models.Product{
		Id:         "ignored",
		Name:       "Medjool Dates",
		Grades:     []string{"Extra", "First"},
		PricePerKg: 150,
		SellerId:   "someone-else",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", product.Id)
	assert.Equal(t, seller.ID, product.SellerId)
	assert.Equal(t, seller.Name, product.SellerName)

	got, err := svc.GetProduct(ctx, RandomBuyer(), product.Id)
	require.NoError(t, err)
	assert.Equal(t, product, got)

	_, err = svc.CreateProduct(ctx, seller, models.Product{Name: "Deglet Nour", PricePerKg: 0})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateProduct(ctx, seller, models.Product{Name: " ", PricePerKg: 10})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateProduct(ctx, RandomBuyer(), models.Product{Name: "Deglet Nour", PricePerKg: 65})
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	seller := RandomSeller()

	product, err := svc.CreateProduct(ctx, seller, models.Product{Name: "Medjool Dates", PricePerKg: 150})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, seller, models.Product{Id: gofakeit.UUID(), Name: "x", PricePerKg: 1})
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.UpdateProduct(ctx, RandomSeller(), models.Product{Id: product.Id, Name: "Stolen", PricePerKg: 1})
	require.ErrorIs(t, err, models.ErrUnauthorized)

	updated, err := svc.UpdateProduct(ctx, seller, models.Product{Id: product.Id, Name: "Medjool Premium", PricePerKg: 175, SellerId: "other"})
	require.NoError(t, err)
	assert.Equal(t, seller.ID, updated.SellerId)
	assert.Equal(t, 175.0, updated.PricePerKg)

	err = svc.DeleteProduct(ctx, RandomSeller(), product.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	require.NoError(t, svc.DeleteProduct(ctx, seller, product.Id))

	_, err = svc.GetProduct(ctx, seller, product.Id)
	require.ErrorIs(t, err, models.ErrNoProduct)

	err = svc.DeleteProduct(ctx, seller, product.Id)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestOrderUnaffectedByCatalogueEdits(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()

	product, err := svc.CreateProduct(ctx, seller, models.Product{Name: "Medjool Dates", PricePerKg: 150})
	require.NoError(t, err)

	rfq, err := svc.CreateRFQ(ctx, buyer, models.RFQ{ProductName: product.Name, QuantityKg: 2000})
	require.NoError(t, err)
	bid := SubmitBid(t, svc, seller, rfq.Id, 140)
	order, err := svc.AcceptBid(ctx, buyer, bid.Id)
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, seller, models.Product{Id: product.Id, Name: "Medjool Premium", PricePerKg: 210})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRFQ(ctx, buyer, rfq.Id))

	got, err := svc.GetOrder(ctx, seller, order.Id)
	require.NoError(t, err)
	assert.Equal(t, "Medjool Dates", got.ProductName)
	assert.Equal(t, 140.0, got.PricePerKg)
	assert.Equal(t, 2000.0, got.QuantityKg)
	assert.Equal(t, 280000.0, got.TotalPrice)
	assert.Equal(t, rfq.Id, got.RFQId)
}

func TestCreateRFQForcesOpen(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer := RandomBuyer()

	rfq, err := svc.CreateRFQ(ctx, buyer, models.RFQ{
		Id:          "ignored",
		BuyerId:     "someone-else",
		ProductName: "Medjool Dates",
		QuantityKg:  5000,
		Status:      models.RFQClosed,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", rfq.Id)
	assert.Equal(t, buyer.ID, rfq.BuyerId)
	assert.Equal(t, buyer.Name, rfq.BuyerName)
	assert.Equal(t, models.RFQOpen, rfq.Status)
	assert.False(t, rfq.CreatedAt.IsZero())

	_, err = svc.CreateRFQ(ctx, buyer, models.RFQ{ProductName: "Dates", QuantityKg: -1})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateRFQ(ctx, RandomSeller(), models.RFQ{ProductName: "Dates", QuantityKg: 1})
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestUpdateRFQKeepsStatus(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()

	rfq := CreateRFQ(t, svc, buyer, 5000)
	bid := SubmitBid(t, svc, seller, rfq.Id, 120)
	order, err := svc.AcceptBid(ctx, buyer, bid.Id)
	require.NoError(t, err)

	edit := rfq
	edit.QuantityKg = 7000
	edit.Status = models.RFQOpen
	edit.BuyerId = "other"
	updated, err := svc.UpdateRFQ(ctx, buyer, edit)
	require.NoError(t, err)
	assert.Equal(t, 7000.0, updated.QuantityKg)
	assert.Equal(t, models.RFQClosed, updated.Status)
	assert.Equal(t, buyer.ID, updated.BuyerId)
	assert.Equal(t, rfq.CreatedAt, updated.CreatedAt)

	// the order keeps the quantity agreed at acceptance
	got, err := svc.GetOrder(ctx, buyer, order.Id)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got.QuantityKg)
	assert.Equal(t, 120.0, got.PricePerKg)
	assert.Equal(t, 600000.0, got.TotalPrice)
	assert.Equal(t, rfq.ProductName, got.ProductName)

	_, err = svc.UpdateRFQ(ctx, RandomBuyer(), edit)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	edit.Id = gofakeit.UUID()
	_, err = svc.UpdateRFQ(ctx, buyer, edit)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteRFQRemovesBids(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer := RandomBuyer()

	rfq := CreateRFQ(t, svc, buyer, 1000)
	other := CreateRFQ(t, svc, buyer, 2000)
	for i := 0; i < 3; i++ {
		SubmitBid(t, svc, RandomSeller(), rfq.Id, float64(100+i))
	}
	kept := SubmitBid(t, svc, RandomSeller(), other.Id, 90)

	err := svc.DeleteRFQ(ctx, RandomBuyer(), rfq.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	require.NoError(t, svc.DeleteRFQ(ctx, buyer, rfq.Id))

	snap, err := svc.Snapshot(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, kept.Id, snap.Bids[0].Id)
	for _, b := range snap.Bids {
		assert.NotEqual(t, rfq.Id, b.RFQId)
	}

	_, err = svc.GetRFQ(ctx, buyer, rfq.Id)
	require.ErrorIs(t, err, models.ErrNoRFQ)
}

func TestSubmitBid(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()
	rfq := CreateRFQ(t, svc, buyer, 5000)

	bid, err := svc.SubmitBid(ctx, seller, models.Bid{RFQId: rfq.Id, PricePerKg: 120, SellerId: "x", Status: models.BidAccepted})
	require.NoError(t, err)
	assert.Equal(t, seller.ID, bid.SellerId)
	assert.Equal(t, seller.Code, bid.SellerCode)
	assert.Equal(t, models.BidPending, bid.Status)

	_, err = svc.SubmitBid(ctx, seller, models.Bid{RFQId: rfq.Id, PricePerKg: 110})
	require.ErrorIs(t, err, models.ErrDuplicateBid)

	bids, err := svc.ListBids(ctx, seller, models.BidFilter{RFQId: rfq.Id, SellerId: seller.ID})
	require.NoError(t, err)
	assert.Len(t, bids, 1)

	_, err = svc.SubmitBid(ctx, seller, models.Bid{RFQId: gofakeit.UUID(), PricePerKg: 110})
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.SubmitBid(ctx, RandomSeller(), models.Bid{RFQId: rfq.Id, PricePerKg: 0})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.SubmitBid(ctx, buyer, models.Bid{RFQId: rfq.Id, PricePerKg: 10})
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSubmitBidOnClosedRFQ(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer := RandomBuyer()
	rfq := CreateRFQ(t, svc, buyer, 5000)
	bid := SubmitBid(t, svc, RandomSeller(), rfq.Id, 120)

	_, err := svc.AcceptBid(ctx, buyer, bid.Id)
	require.NoError(t, err)

	_, err = svc.SubmitBid(ctx, RandomSeller(), models.Bid{RFQId: rfq.Id, PricePerKg: 100})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAcceptBid(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()

	rfq := CreateRFQ(t, svc, buyer, 5000)
	bid := SubmitBid(t, svc, seller, rfq.Id, 120)
	competing := SubmitBid(t, svc, RandomSeller(), rfq.Id, 130)

	order, err := svc.AcceptBid(ctx, buyer, bid.Id)
	require.NoError(t, err)
	assert.Equal(t, 600000.0, order.TotalPrice)
	assert.Equal(t, models.OrderPendingPayment, order.Status)
	assert.Equal(t, rfq.ProductName, order.ProductName)
	assert.Equal(t, rfq.Id, order.RFQId)
	assert.Equal(t, bid.Id, order.BidId)
	assert.Equal(t, buyer.ID, order.BuyerId)
	assert.Equal(t, seller.ID, order.SellerId)
	assert.Empty(t, order.Messages)
	assert.Nil(t, order.ShippingDetails)
	assert.Equal(t, "/contracts/"+order.Id, order.ContractURL)

	gotRFQ, err := svc.GetRFQ(ctx, buyer, rfq.Id)
	require.NoError(t, err)
	assert.Equal(t, models.RFQClosed, gotRFQ.Status)

	gotBid, err := svc.GetBid(ctx, buyer, bid.Id)
	require.NoError(t, err)
	assert.Equal(t, models.BidAccepted, gotBid.Status)

	gotCompeting, err := svc.GetBid(ctx, buyer, competing.Id)
	require.NoError(t, err)
	assert.Equal(t, models.BidPending, gotCompeting.Status)

	_, err = svc.AcceptBid(ctx, buyer, competing.Id)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.AcceptBid(ctx, buyer, bid.Id)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	orders, err := svc.ListOrders(ctx, buyer, models.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestAcceptBidSellerCode(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer := RandomBuyer()
	seller := models.Actor{ID: gofakeit.UUID(), Role: models.RoleSeller, Name: "Oasis Farms", Code: "AKOUB03"}

	rfq := CreateRFQ(t, svc, buyer, 10000)
	bid := SubmitBid(t, svc, seller, rfq.Id, 45)

	order, err := svc.AcceptBid(ctx, buyer, bid.Id)
	require.NoError(t, err)
	assert.Equal(t, 450000.0, order.TotalPrice)
	assert.Equal(t, "AKOUB03", order.SellerCode)
	assert.Equal(t, 45.0, order.PricePerKg)
	assert.Equal(t, 10000.0, order.QuantityKg)
}

func TestAcceptBidChecks(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer := RandomBuyer()
	rfq := CreateRFQ(t, svc, buyer, 5000)
	bid := SubmitBid(t, svc, RandomSeller(), rfq.Id, 120)

	before, err := svc.Snapshot(ctx, buyer)
	require.NoError(t, err)

	_, err = svc.AcceptBid(ctx, RandomBuyer(), bid.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.AcceptBid(ctx, RandomSeller(), bid.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.AcceptBid(ctx, buyer, gofakeit.UUID())
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.AcceptBid(ctx, models.Actor{}, bid.Id)
	require.ErrorIs(t, err, models.ErrInvalidActor)

	after, err := svc.Snapshot(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAcceptBidConcurrent(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer := RandomBuyer()
	rfq := CreateRFQ(t, svc, buyer, 5000)

	var bids []models.Bid
	for i := 0; i < 8; i++ {
		bids = append(bids, SubmitBid(t, svc, RandomSeller(), rfq.Id, float64(100+i)))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for _, bid := range bids {
		wg.Add(1)
		go func(bidId string) {
			defer wg.Done()
			_, err := svc.AcceptBid(ctx, buyer, bidId)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, models.ErrInvalidTransition):
				rejected++
			}
		}(bid.Id)
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, len(bids)-1, rejected)

	orders, err := svc.ListOrders(ctx, buyer, models.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	acceptedBids, err := svc.ListBids(ctx, buyer, models.BidFilter{RFQId: rfq.Id, Status: models.BidAccepted})
	require.NoError(t, err)
	assert.Len(t, acceptedBids, 1)
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()
	order := CreateOrder(t, svc, buyer, seller)

	_, err := svc.AdvanceOrderStatus(ctx, buyer, order.Id, models.OrderCompleted)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.ConfirmPayment(ctx, seller, order.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.ConfirmPayment(ctx, RandomBuyer(), order.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	order, err = svc.ConfirmPayment(ctx, buyer, order.Id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, order.Status)

	_, err = svc.AdvanceOrderStatus(ctx, buyer, order.Id, models.OrderCompleted)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.AdvanceOrderStatus(ctx, seller, order.Id, models.OrderPendingPayment)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.AdvanceOrderStatus(ctx, seller, order.Id, models.OrderDelivered)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.AdvanceOrderStatus(ctx, seller, order.Id, "lost")
	require.ErrorIs(t, err, models.ErrValidation)

	order, err = svc.MarkShipped(ctx, seller, order.Id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, order.Status)

	_, err = svc.ConfirmReceipt(ctx, seller, order.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	order, err = svc.ConfirmReceipt(ctx, buyer, order.Id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.True(t, order.UpdatedAt.After(order.CreatedAt))

	_, err = svc.AdvanceOrderStatus(ctx, buyer, order.Id, models.OrderDisputed)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.AdvanceOrderStatus(ctx, buyer, gofakeit.UUID(), models.OrderProcessing)
	require.ErrorIs(t, err, models.ErrNoOrder)
}

func TestAttachShippingDetails(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()
	order := CreateOrder(t, svc, buyer, seller)

	shipDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	arrival := shipDate.Add(5 * 24 * time.Hour)
	cost := 1200.0
	details := models.ShippingDetails{
		Carrier:          "Maersk",
		TrackingNumber:   "TRK-42",
		ShippingDate:     &shipDate,
		EstimatedArrival: &arrival,
		PackagingType:    "cartons",
		ShippingCost:     &cost,
	}

	_, err := svc.AttachShippingDetails(ctx, seller, order.Id, details)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.ConfirmPayment(ctx, buyer, order.Id)
	require.NoError(t, err)

	_, err = svc.AttachShippingDetails(ctx, buyer, order.Id, details)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	shipped, err := svc.AttachShippingDetails(ctx, seller, order.Id, details)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, shipped.Status)
	require.NotNil(t, shipped.ShippingDetails)
	assert.Equal(t, "TRK-42", shipped.ShippingDetails.TrackingNumber)

	updated, err := svc.RecordShipping(ctx, seller, order.Id, models.ShippingDetails{TrackingNumber: "TRK-43"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
	assert.Equal(t, "TRK-43", updated.ShippingDetails.TrackingNumber)
	assert.Equal(t, "Maersk", updated.ShippingDetails.Carrier)
	require.NotNil(t, updated.ShippingDetails.ShippingCost)
	assert.Equal(t, 1200.0, *updated.ShippingDetails.ShippingCost)

	free := 0.0
	updated, err = svc.RecordShipping(ctx, seller, order.Id, models.ShippingDetails{ShippingCost: &free})
	require.NoError(t, err)
	require.NotNil(t, updated.ShippingDetails.ShippingCost)
	assert.Zero(t, *updated.ShippingDetails.ShippingCost)
	assert.Equal(t, "TRK-43", updated.ShippingDetails.TrackingNumber)

	_, err = svc.AttachShippingDetails(ctx, seller, order.Id, details)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestRecordShipping(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()
	order := CreateOrder(t, svc, buyer, seller)

	_, err := svc.RecordShipping(ctx, seller, order.Id, models.ShippingDetails{Carrier: "DHL"})
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.ConfirmPayment(ctx, buyer, order.Id)
	require.NoError(t, err)

	negative := -5.0
	_, err = svc.RecordShipping(ctx, seller, order.Id, models.ShippingDetails{ShippingCost: &negative})
	require.ErrorIs(t, err, models.ErrValidation)

	recorded, err := svc.RecordShipping(ctx, seller, order.Id, models.ShippingDetails{Carrier: "DHL"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, recorded.Status)
	assert.Equal(t, "DHL", recorded.ShippingDetails.Carrier)

	_, err = svc.RecordShipping(ctx, buyer, order.Id, models.ShippingDetails{Carrier: "UPS"})
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestPostMessage(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()
	order := CreateOrder(t, svc, buyer, seller)

	_, err := svc.PostMessage(ctx, buyer, order.Id, "When will it ship?")
	require.NoError(t, err)
	order, err = svc.PostMessage(ctx, seller, order.Id, "Tomorrow")
	require.NoError(t, err)

	require.Len(t, order.Messages, 2)
	assert.Equal(t, buyer.ID, order.Messages[0].SenderId)
	assert.Equal(t, "Tomorrow", order.Messages[1].Text)
	assert.False(t, order.Messages[1].IsSystem)

	_, err = svc.PostMessage(ctx, RandomSeller(), order.Id, "hello")
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.PostMessage(ctx, buyer, order.Id, "")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestOrdersVisibleToParticipants(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer, seller := RandomBuyer(), RandomSeller()
	order := CreateOrder(t, svc, buyer, seller)
	CreateOrder(t, svc, RandomBuyer(), RandomSeller())

	_, err := svc.GetOrder(ctx, RandomBuyer(), order.Id)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	got, err := svc.GetOrder(ctx, seller, order.Id)
	require.NoError(t, err)
	assert.Equal(t, order.Id, got.Id)

	orders, err := svc.ListOrders(ctx, seller, models.OrderFilter{BuyerId: "anyone"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.Id, orders[0].Id)

	snap, err := svc.Snapshot(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, snap.Orders, 1)
	assert.Len(t, snap.RFQs, 2)

	_, err = svc.ListOrders(ctx, buyer, models.OrderFilter{Status: "lost"})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	svc := StartupService(t)
	buyer := RandomBuyer()

	first, err := svc.CreateRFQ(ctx, buyer, models.RFQ{ProductName: "Medjool Dates", QuantityKg: 100})
	require.NoError(t, err)
	second, err := svc.CreateRFQ(ctx, buyer, models.RFQ{ProductName: "Deglet Nour", QuantityKg: 200})
	require.NoError(t, err)

	rfqs, err := svc.ListRFQs(ctx, buyer, models.RFQFilter{})
	require.NoError(t, err)
	require.Len(t, rfqs, 2)
	assert.Equal(t, second.Id, rfqs[0].Id)

	rfqs, err = svc.ListRFQs(ctx, buyer, models.RFQFilter{Search: "medjool"})
	require.NoError(t, err)
	require.Len(t, rfqs, 1)
	assert.Equal(t, first.Id, rfqs[0].Id)

	rfqs, err = svc.ListRFQs(ctx, buyer, models.RFQFilter{Status: models.RFQClosed})
	require.NoError(t, err)
	assert.Empty(t, rfqs)

	_, err = svc.ListRFQs(ctx, buyer, models.RFQFilter{Status: "archived"})
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.ListBids(ctx, buyer, models.BidFilter{RFQId: gofakeit.UUID()})
	require.ErrorIs(t, err, models.ErrNoRFQ)
}

//// Service

func StartupService(t *testing.T) *Service {
	t.Helper()

	store := memory.New()
	t.Cleanup(func() {
		store.Close()
	})

	var mu sync.Mutex
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	return NewService(store, zap.NewNop(), WithClock(now))
}

func RandomBuyer() models.Actor {
	return models.Actor{
		ID:   gofakeit.UUID(),
		Role: models.RoleBuyer,
		Name: gofakeit.Company(),
	}
}

func RandomSeller() models.Actor {
	return models.Actor{
		ID:   gofakeit.UUID(),
		Role: models.RoleSeller,
		Name: gofakeit.Company(),
		Code: gofakeit.Regex("[A-Z]{5}[0-9]{2}"),
	}
}

func CreateRFQ(t *testing.T, svc *Service, buyer models.Actor, quantity float64) models.RFQ {
	t.Helper()

	rfq, err := svc.CreateRFQ(context.Background(), buyer, models.RFQ{
		ProductName:  gofakeit.ProductName(),
		QuantityKg:   quantity,
		QualityGrade: gofakeit.Word(),
	})
	require.NoError(t, err)
	return rfq
}

func SubmitBid(t *testing.T, svc *Service, seller models.Actor, rfqId string, price float64) models.Bid {
	t.Helper()

	bid, err := svc.SubmitBid(context.Background(), seller, models.Bid{RFQId: rfqId, PricePerKg: price})
	require.NoError(t, err)
	return bid
}

func CreateOrder(t *testing.T, svc *Service, buyer, seller models.Actor) models.Order {
	t.Helper()

	rfq := CreateRFQ(t, svc, buyer, float64(gofakeit.Number(100, 10000)))
	bid := SubmitBid(t, svc, seller, rfq.Id, float64(gofakeit.Number(10, 200)))
	order, err := svc.AcceptBid(context.Background(), buyer, bid.Id)
	require.NoError(t, err)
	return order
}
