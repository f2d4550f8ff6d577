// internal/membership/coupon.go
package membership

import (
	"fmt"
	"strconv"

	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/models"
)

type SynthesizerConfig struct {
	IncludeCalendarEvent bool
}

// Synthesizer turns matched partners into coupons.
type Synthesizer struct {
	config SynthesizerConfig
}

func NewSynthesizer(config SynthesizerConfig) *Synthesizer {
	return &Synthesizer{config: config}
}

// Recommend matches the places against the catalog partners and renders one
// coupon per match. An empty Recommendation means nothing matched.
func (s *Synthesizer) Recommend(places []string, partners []models.Partner) (*models.Recommendation, error) {
	return s.Synthesize(Match(places, partners), places)
}

// Synthesize renders a coupon for each matched partner, preserving order.
func (s *Synthesizer) Synthesize(matched []models.Partner, places []string) (*models.Recommendation, error) {
	coupons := make([]models.Coupon, 0, len(matched))

	for i := range matched {
		p := &matched[i]

		loc, ok := NearestLocation(p, places)
		if !ok {
			return nil, errors.NewPartnerWithoutLocationError(p.ID)
		}

		coupon := models.Coupon{
			PartnerID:   p.ID,
			PartnerName: p.Name,
			Category:    p.Category,
			Description: Describe(p.PrimaryBenefit()),
			Location:    loc.Near,
			MapURL:      loc.MapURL,
		}
		if s.config.IncludeCalendarEvent {
			coupon.CalendarEvent = calendarEvent(coupon)
		}
		coupons = append(coupons, coupon)
	}

	return &models.Recommendation{Coupons: coupons}, nil
}

// NearestLocation picks the first location matched by any place, scanning
// places in order. Without a hit it falls back to the partner's first
// location. ok is false only when the partner has no locations at all.
func NearestLocation(p *models.Partner, places []string) (models.Location, bool) {
	if len(p.Locations) == 0 {
		return models.Location{}, false
	}

	for _, place := range places {
		for _, loc := range p.Locations {
			if locationMatches(place, loc) {
				return loc, true
			}
		}
	}

	return p.Locations[0], true
}

// Describe renders the human-readable text of a benefit. Unknown shapes
// render as the empty string.
func Describe(b models.Benefit) string {
	switch v := b.(type) {
	case models.PercentDiscountOrPoints:
		return fmt.Sprintf("VIP %s%% discount/points (limit %d/month)", formatNumber(v.ValuePercent), v.LimitCount)
	case models.PercentDiscount:
		return fmt.Sprintf("%s%% discount for all tiers", formatNumber(v.ValuePercent))
	case models.MovieBenefit:
		return fmt.Sprintf("%d free tickets/year, %d buy-one-get-one/year", v.FreeTicketsPerYear, v.OnePlusOnePerYear)
	case models.TicketBenefit:
		return fmt.Sprintf("%s%% off for self, %d companions at %s%% off",
			formatNumber(v.MemberPercent), v.CompanionsCount, formatNumber(v.CompanionsPercent))
	default:
		return ""
	}
}

// formatNumber prints 10 as "10" and 7.5 as "7.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func calendarEvent(c models.Coupon) *models.CalendarEvent {
	return &models.CalendarEvent{
		Title:       c.PartnerName + " visit",
		Location:    c.Location,
		Description: fmt.Sprintf("%s\nMap: %s", c.Description, c.MapURL),
	}
}
