package models

// Snapshot is a consistent copy of the four ledger collections.
type Snapshot struct {
	Products []Product `json:"products"`
	RFQs     []RFQ     `json:"rfqs"`
	Bids     []Bid     `json:"bids"`
	Orders   []Order   `json:"orders"`
}
