package models

// Product is a seller's catalogue listing.
type Product struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Grades      []string `json:"grades"`
	PricePerKg  float64  `json:"pricePerKg"`
	SellerId    string   `json:"sellerId"`
	SellerName  string   `json:"sellerName,omitempty"`
}

func (p Product) Clone() Product {
	if p.Grades != nil {
		p.Grades = append([]string(nil), p.Grades...)
	}
	return p
}
