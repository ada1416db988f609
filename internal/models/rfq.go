package models

import "time"

type RFQStatus string

const (
	RFQOpen   RFQStatus = "open"
	RFQClosed RFQStatus = "closed"
)

func ValidRFQStatus(s RFQStatus) bool {
	switch s {
	case RFQOpen, RFQClosed:
		return true
	default:
		return false
	}
}

// RFQ is a buyer's request for quote. ProductName is free text and does not
// reference a Product.
type RFQ struct {
	Id           string    `json:"id" db:"id"`
	BuyerId      string    `json:"buyerId" db:"buyer_id"`
	BuyerName    string    `json:"buyerName" db:"buyer_name"`
	ProductName  string    `json:"productName" db:"product_name"`
	QuantityKg   float64   `json:"quantityKg" db:"quantity_kg"`
	QualityGrade string    `json:"qualityGrade" db:"quality_grade"`
	Status       RFQStatus `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
