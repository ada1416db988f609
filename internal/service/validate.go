package service

import (
	"fmt"
	"math"
	"strings"

	"agromarket/internal/models"
)

func checkActor(a models.Actor) error {
	if a.ID == "" || !models.ValidRole(a.Role) {
		return models.ErrInvalidActor
	}
	return nil
}

func requireRole(a models.Actor, role models.Role) error {
	if err := checkActor(a); err != nil {
		return err
	}
	if a.Role != role {
		return fmt.Errorf("%w: only a %s can do this", models.ErrUnauthorized, role)
	}
	return nil
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s should be positive, got %v", models.ErrValidation, name, v)
	}
	return nil
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", models.ErrValidation, name)
	}
	return nil
}

func validateProduct(p models.Product) error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	for _, g := range p.Grades {
		if err := required("grade", g); err != nil {
			return err
		}
	}
	return positive("pricePerKg", p.PricePerKg)
}

func validateRFQ(r models.RFQ) error {
	if err := required("productName", r.ProductName); err != nil {
		return err
	}
	return positive("quantityKg", r.QuantityKg)
}

func validateShipping(d models.ShippingDetails) error {
	if c := d.ShippingCost; c != nil && (math.IsNaN(*c) || math.IsInf(*c, 0) || *c < 0) {
		return fmt.Errorf("%w: shippingCost should not be negative", models.ErrValidation)
	}
	if d.ShippingDate != nil && d.EstimatedArrival != nil && d.EstimatedArrival.Before(*d.ShippingDate) {
		return fmt.Errorf("%w: estimatedArrival is before shippingDate", models.ErrValidation)
	}
	return nil
}
