package controller

import (
	"encoding/json"
	"fmt"
	"time"

	"agromarket/internal/models"
)

// Product request

type ProductReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Grades      []string `json:"grades"`
	PricePerKg  float64  `json:"pricePerKg"`
	SellerName  string   `json:"sellerName"`
}

func ParseProductReq(data []byte) (*ProductReq, error) {
	p := &ProductReq{}

	err := json.Unmarshal(data, p)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(p.Name, "name", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(p.Description, "description", 1000); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(p.ImageURL, "imageUrl", 500); err != nil {
		return nil, err
	}
	for _, g := range p.Grades {
		if err = checkLengthLimit(g, "grades", 50); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *ProductReq) Model(id string) models.Product {
	return models.Product{
		Id:          id,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Grades:      p.Grades,
		PricePerKg:  p.PricePerKg,
		SellerName:  p.SellerName,
	}
}

// RFQ request

type RFQReq struct {
	ProductName  string  `json:"productName"`
	QuantityKg   float64 `json:"quantityKg"`
	QualityGrade string  `json:"qualityGrade"`
}

func ParseRFQReq(data []byte) (*RFQReq, error) {
	r := &RFQReq{}

	err := json.Unmarshal(data, r)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(r.ProductName, "productName", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(r.QualityGrade, "qualityGrade", 50); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RFQReq) Model(id string) models.RFQ {
	return models.RFQ{
		Id:           id,
		ProductName:  r.ProductName,
		QuantityKg:   r.QuantityKg,
		QualityGrade: r.QualityGrade,
	}
}

// Bid request

type BidReq struct {
	PricePerKg float64 `json:"pricePerKg"`
}

func ParseBidReq(data []byte) (*BidReq, error) {
	b := &BidReq{}

	err := json.Unmarshal(data, b)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// Order status request

type StatusReq struct {
	Status models.OrderStatus `json:"status"`
}

func ParseStatusReq(data []byte) (*StatusReq, error) {
	s := &StatusReq{}

	err := json.Unmarshal(data, s)
	if err != nil {
		return nil, err
	}

	if !models.ValidOrderStatus(s.Status) {
		return nil, fmt.Errorf("invalid order status supplied: %q, should be one of: %s, %s, %s, %s, %s, %s", string(s.Status),
			models.OrderPendingPayment, models.OrderProcessing, models.OrderShipped, models.OrderDelivered, models.OrderCompleted, models.OrderDisputed)
	}

	return s, nil
}

// Shipping request

type ShippingReq struct {
	Carrier          string   `json:"carrier"`
	TrackingNumber   string   `json:"trackingNumber"`
	ShippingDate     Date     `json:"shippingDate"`
	EstimatedArrival Date     `json:"estimatedArrival"`
	PackagingType    string   `json:"packagingType"`
	ShippingCost     *float64 `json:"shippingCost"`
}

// Date accepts an RFC3339 timestamp or a plain YYYY-MM-DD date, as sent by
// date inputs. An empty string or null leaves it unset.
type Date struct {
	Time *time.Time
}

var dateLayouts = []string{time.RFC3339Nano, time.DateOnly}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	d.Time = nil
	if s == nil || *s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, *s)
		if err == nil {
			d.Time = &t
			return nil
		}
	}
	return fmt.Errorf("invalid date supplied: %q, should be YYYY-MM-DD or RFC3339", *s)
}

func ParseShippingReq(data []byte) (*ShippingReq, error) {
	s := &ShippingReq{}

	err := json.Unmarshal(data, s)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(s.Carrier, "carrier", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(s.TrackingNumber, "trackingNumber", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(s.PackagingType, "packagingType", 100); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *ShippingReq) Model() models.ShippingDetails {
	return models.ShippingDetails{
		Carrier:          s.Carrier,
		TrackingNumber:   s.TrackingNumber,
		ShippingDate:     s.ShippingDate.Time,
		EstimatedArrival: s.EstimatedArrival.Time,
		PackagingType:    s.PackagingType,
		ShippingCost:     s.ShippingCost,
	}
}

// Message request

type MessageReq struct {
	Text string `json:"text"`
}

func ParseMessageReq(data []byte) (*MessageReq, error) {
	m := &MessageReq{}

	err := json.Unmarshal(data, m)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(m.Text, "text", 2000); err != nil {
		return nil, err
	}

	return m, nil
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}
