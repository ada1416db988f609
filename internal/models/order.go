package models

import "time"

type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderProcessing     OrderStatus = "processing"
	OrderShipped        OrderStatus = "shipped"
	OrderDelivered      OrderStatus = "delivered" // reserved, no trigger
	OrderCompleted      OrderStatus = "completed"
	OrderDisputed       OrderStatus = "disputed" // reserved, no trigger
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPendingPayment, OrderProcessing, OrderShipped, OrderDelivered, OrderCompleted, OrderDisputed:
		return true
	default:
		return false
	}
}

// ShippingDetails are entered by the seller. Every field is optional.
type ShippingDetails struct {
	Carrier          string     `json:"carrier,omitempty"`
	TrackingNumber   string     `json:"trackingNumber,omitempty"`
	ShippingDate     *time.Time `json:"shippingDate,omitempty"`
	EstimatedArrival *time.Time `json:"estimatedArrival,omitempty"`
	PackagingType    string     `json:"packagingType,omitempty"`
	ShippingCost     *float64   `json:"shippingCost,omitempty"`
}

// Merge overwrites the fields that are set in other. Text fields can not be
// cleared; ShippingCost is set whenever other carries it, including zero.
func (d ShippingDetails) Merge(other ShippingDetails) ShippingDetails {
	if other.Carrier != "" {
		d.Carrier = other.Carrier
	}
	if other.TrackingNumber != "" {
		d.TrackingNumber = other.TrackingNumber
	}
	if other.ShippingDate != nil {
		t := *other.ShippingDate
		d.ShippingDate = &t
	}
	if other.EstimatedArrival != nil {
		t := *other.EstimatedArrival
		d.EstimatedArrival = &t
	}
	if other.PackagingType != "" {
		d.PackagingType = other.PackagingType
	}
	if other.ShippingCost != nil {
		c := *other.ShippingCost
		d.ShippingCost = &c
	}
	return d
}

type Message struct {
	Id        string    `json:"id"`
	SenderId  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsSystem  bool      `json:"isSystem,omitempty"`
}

// Order is created once per accepted bid. ProductName, QuantityKg, PricePerKg
// and TotalPrice are copied at acceptance and never change afterwards.
type Order struct {
	Id              string           `json:"id"`
	RFQId           string           `json:"rfqId"`
	BidId           string           `json:"bidId"`
	BuyerId         string           `json:"buyerId"`
	SellerId        string           `json:"sellerId"`
	SellerCode      string           `json:"sellerCode"`
	ProductName     string           `json:"productName"`
	QuantityKg      float64          `json:"quantityKg"`
	PricePerKg      float64          `json:"pricePerKg"`
	TotalPrice      float64          `json:"totalPrice"`
	Status          OrderStatus      `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	ShippingDetails *ShippingDetails `json:"shippingDetails,omitempty"`
	Messages        []Message        `json:"messages"`
	ContractURL     string           `json:"contractUrl,omitempty"`
}

// ContractURL is the path of the contract document generated for an order.
func ContractURL(orderId string) string {
	return "/contracts/" + orderId
}

func (o Order) Clone() Order {
	if o.ShippingDetails != nil {
		d := *o.ShippingDetails
		if d.ShippingDate != nil {
			t := *d.ShippingDate
			d.ShippingDate = &t
		}
		if d.EstimatedArrival != nil {
			t := *d.EstimatedArrival
			d.EstimatedArrival = &t
		}
		if d.ShippingCost != nil {
			c := *d.ShippingCost
			d.ShippingCost = &c
		}
		o.ShippingDetails = &d
	}
	o.Messages = append([]Message{}, o.Messages...)
	return o
}

// Participant reports whether the actor is the order's buyer or seller.
func (o Order) Participant(a Actor) bool {
	return (a.IsBuyer() && a.ID == o.BuyerId) || (a.IsSeller() && a.ID == o.SellerId)
}
