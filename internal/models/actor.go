package models

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleBuyer, RoleSeller:
		return true
	default:
		return false
	}
}

// Actor is the user on whose behalf a ledger operation runs. It is supplied
// by the identity layer and trusted as is.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"` // public seller code, e.g. AKOUB03
}

func (a Actor) IsBuyer() bool  { return a.Role == RoleBuyer }
func (a Actor) IsSeller() bool { return a.Role == RoleSeller }
