// internal/models/coupon.go
package models

import "fmt"

// NoCouponsMessage is returned to callers instead of an empty coupon list.
const NoCouponsMessage = "no coupons found"

type Coupon struct {
	PartnerID     string         `json:"partnerId"`
	PartnerName   string         `json:"partnerName"`
	Category      string         `json:"category"`
	Description   string         `json:"description"`
	Location      string         `json:"location"`
	MapURL        string         `json:"mapUrl"`
	CalendarEvent *CalendarEvent `json:"calendarEvent,omitempty"`
}

type CalendarEvent struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Recommendation is the result of a coupon recommendation. An empty
// Recommendation means nothing matched, which callers surface as
// NoCouponsMessage rather than as an empty list.
type Recommendation struct {
	Coupons []Coupon `json:"coupons"`
}

func (r *Recommendation) Found() bool {
	return r != nil && len(r.Coupons) > 0
}

// Message is the human-readable summary used by workflow outputs.
func (r *Recommendation) Message() string {
	if !r.Found() {
		return NoCouponsMessage
	}
	return fmt.Sprintf("%d coupons recommended", len(r.Coupons))
}
