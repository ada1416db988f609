package models

import "strings"

type ProductFilter struct {
	SellerId string
	Search   string
}

func (f ProductFilter) Match(p Product) bool {
	if f.SellerId != "" && p.SellerId != f.SellerId {
		return false
	}
	return matchSearch(f.Search, p.Name, p.Id)
}

type RFQFilter struct {
	BuyerId string
	Status  RFQStatus
	Search  string
}

func (f RFQFilter) Match(r RFQ) bool {
	if f.BuyerId != "" && r.BuyerId != f.BuyerId {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return matchSearch(f.Search, r.ProductName, r.Id)
}

type BidFilter struct {
	RFQId    string
	SellerId string
	Status   BidStatus
}

func (f BidFilter) Match(b Bid) bool {
	if f.RFQId != "" && b.RFQId != f.RFQId {
		return false
	}
	if f.SellerId != "" && b.SellerId != f.SellerId {
		return false
	}
	return f.Status == "" || b.Status == f.Status
}

type OrderFilter struct {
	BuyerId  string
	SellerId string
	Status   OrderStatus
	Search   string
}

func (f OrderFilter) Match(o Order) bool {
	if f.BuyerId != "" && o.BuyerId != f.BuyerId {
		return false
	}
	if f.SellerId != "" && o.SellerId != f.SellerId {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return matchSearch(f.Search, o.ProductName, o.Id)
}

// matchSearch is a case-insensitive substring match against the name, or a
// plain substring match against the id.
func matchSearch(search, name, id string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(search)) || strings.Contains(id, search)
}
