package models

import "time"

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidAccepted, BidRejected:
		return true
	default:
		return false
	}
}

type Bid struct {
	Id         string    `json:"id" db:"id"`
	RFQId      string    `json:"rfqId" db:"rfq_id"`
	SellerId   string    `json:"sellerId" db:"seller_id"`
	SellerCode string    `json:"sellerCode" db:"seller_code"`
	PricePerKg float64   `json:"pricePerKg" db:"price_per_kg"`
	Status     BidStatus `json:"status" db:"status"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
