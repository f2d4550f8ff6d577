// internal/models/partner.go
package models

// Partner is a merchant in the membership catalog. Catalog values are shared
// read-only between calls; nothing in the request path mutates them.
type Partner struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Locations []Location      `json:"locations"`
	Benefits  []BenefitRecord `json:"benefits"`
}

// Location is a physical site of a partner.
type Location struct {
	Near   string `json:"near"`
	MapURL string `json:"map_url"`
}

// PrimaryBenefit returns the first benefit of the partner, or an UnknownBenefit
// when the partner has none.
func (p *Partner) PrimaryBenefit() Benefit {
	if len(p.Benefits) == 0 || p.Benefits[0].Benefit == nil {
		return UnknownBenefit{}
	}
	return p.Benefits[0].Benefit
}
