package app

import (
	"context"
	"fmt"

	"agromarket/internal/models"
	"agromarket/internal/service"
)

// DemoUsers are the accounts the demo catalogue belongs to. Tokens for them
// can be issued with the token command.
var DemoUsers = []models.Actor{
	{ID: "user-1", Role: models.RoleBuyer, Name: "United Import Co."},
	{ID: "user-2", Role: models.RoleSeller, Name: "New Valley Farms", Code: "AKOUB03"},
	{ID: "user-3", Role: models.RoleBuyer, Name: "Modern Distribution Co."},
	{ID: "user-4", Role: models.RoleSeller, Name: "Siwa Dates Cooperative", Code: "AKOUB07"},
}

func DemoUser(id string) (models.Actor, bool) {
	for _, u := range DemoUsers {
		if u.ID == id {
			return u, true
		}
	}
	return models.Actor{}, false
}

// SeedDemo loads the demo catalogue through regular ledger operations, so it
// obeys the same rules as user input: one open RFQ with a pending bid and one
// accepted bid whose order is already paid.
func SeedDemo(ctx context.Context, svc *service.Service) error {
	buyer, seller := DemoUsers[0], DemoUsers[1]
	otherBuyer, otherSeller := DemoUsers[2], DemoUsers[3]

	products := []struct {
		seller  models.Actor
		product models.Product
	}{
		{seller, models.Product{
			Name:        "Premium Medjool Dates",
			Description: "Large, dark and soft with a caramel-like texture.",
			ImageURL:    "images/mjdoel.jpg",
			Grades:      []string{"Super Premium", "First Choice"},
			PricePerKg:  150,
		}},
		{otherSeller, models.Product{
			Name:        "Siwa Oasis Dates",
			Description: "Firm texture, rich in natural sugars, suited to storage and export.",
			ImageURL:    "images/sewi.jpg",
			Grades:      []string{"First Sort Premium", "Second Grade"},
			PricePerKg:  65,
		}},
		{seller, models.Product{
			Name:        "Fresh Barhi Dates",
			Description: "Fresh khalal Barhi, sweet and crunchy, current season.",
			ImageURL:    "images/barhi.jpg",
			Grades:      []string{"First Grade (Fresh)"},
			PricePerKg:  80,
		}},
		{otherSeller, models.Product{
			Name:        "Deglet Nour Dates",
			Description: "Golden semi-dry dates with a honey-like taste.",
			ImageURL:    "images/degla.jpg",
			Grades:      []string{"Premium Export"},
			PricePerKg:  110,
		}},
	}
	for _, p := range products {
		if _, err := svc.CreateProduct(ctx, p.seller, p.product); err != nil {
			return fmt.Errorf("app.SeedDemo: %w", err)
		}
	}

	medjool, err := svc.CreateRFQ(ctx, buyer, models.RFQ{ProductName: "Medjool Dates", QuantityKg: 5000, QualityGrade: "Premium"})
	if err != nil {
		return fmt.Errorf("app.SeedDemo: %w", err)
	}
	if _, err = svc.SubmitBid(ctx, seller, models.Bid{RFQId: medjool.Id, PricePerKg: 120}); err != nil {
		return fmt.Errorf("app.SeedDemo: %w", err)
	}

	saidi, err := svc.CreateRFQ(ctx, otherBuyer, models.RFQ{ProductName: "Saidi Dates", QuantityKg: 10000, QualityGrade: "First Grade"})
	if err != nil {
		return fmt.Errorf("app.SeedDemo: %w", err)
	}
	bid, err := svc.SubmitBid(ctx, seller, models.Bid{RFQId: saidi.Id, PricePerKg: 45})
	if err != nil {
		return fmt.Errorf("app.SeedDemo: %w", err)
	}
	order, err := svc.AcceptBid(ctx, otherBuyer, bid.Id)
	if err != nil {
		return fmt.Errorf("app.SeedDemo: %w", err)
	}
	if _, err = svc.ConfirmPayment(ctx, otherBuyer, order.Id); err != nil {
		return fmt.Errorf("app.SeedDemo: %w", err)
	}

	return nil
}
