// internal/workers/membership/recommend-coupons/models.go
package recommendcoupons

import "entity-mcp/internal/models"

type Input struct {
	Places     []string `json:"places"`
	Times      []string `json:"times,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

// Output always carries a coupons list so gateways can branch on couponsFound.
type Output struct {
	CouponsFound bool            `json:"couponsFound"`
	Coupons      []models.Coupon `json:"coupons"`
	Message      string          `json:"message"`
}
