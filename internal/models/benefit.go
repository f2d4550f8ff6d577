// internal/models/benefit.go
package models

import (
	"encoding/json"
)

// Benefit tags as they appear in the catalog "type" field.
const (
	BenefitTypePercentDiscountOrPoints = "percent_discount_or_points"
	BenefitTypePercentDiscount         = "percent_discount"
)

// Benefit is the closed set of benefit shapes a partner can offer. The
// unexported marker keeps the set sealed to this package so a type switch over
// the variants below plus a default arm is exhaustive.
type Benefit interface {
	benefit()
}

type PercentDiscountOrPoints struct {
	ValuePercent float64
	LimitCount   int
}

type PercentDiscount struct {
	ValuePercent float64
}

type MovieBenefit struct {
	FreeTicketsPerYear int
	OnePlusOnePerYear  int
}

type TicketBenefit struct {
	MemberPercent     float64
	CompanionsCount   int
	CompanionsPercent float64
}

// UnknownBenefit carries any catalog entry none of the known shapes matched.
type UnknownBenefit struct {
	Raw json.RawMessage
}

func (PercentDiscountOrPoints) benefit() {}
func (PercentDiscount) benefit()         {}
func (MovieBenefit) benefit()            {}
func (TicketBenefit) benefit()           {}
func (UnknownBenefit) benefit()          {}

// BenefitRecord is the catalog (JSON) form of a Benefit.
type BenefitRecord struct {
	Benefit Benefit
	raw     json.RawMessage
}

type benefitWire struct {
	Type         string   `json:"type"`
	ValuePercent *float64 `json:"value_percent"`
	Limit        *struct {
		Count int `json:"count"`
	} `json:"limit"`
	Movie *struct {
		FreeTicketsPerYear int `json:"free_tickets_per_year"`
		OnePlusOnePerYear  int `json:"one_plus_one_per_year"`
	} `json:"movie"`
	Ticket *struct {
		MemberPercent     float64 `json:"member_percent"`
		CompanionsCount   int     `json:"companions_count"`
		CompanionsPercent float64 `json:"companions_percent"`
	} `json:"ticket"`
}

// UnmarshalJSON resolves the variant in priority order: type tag
// percent_discount_or_points, type tag percent_discount, movie object, ticket
// object. Anything else becomes UnknownBenefit.
func (r *BenefitRecord) UnmarshalJSON(data []byte) error {
	var w benefitWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.raw = append(json.RawMessage(nil), data...)
	r.Benefit = w.resolve(r.raw)
	return nil
}

// MarshalJSON writes back the catalog form the record was decoded from.
func (r BenefitRecord) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(benefitToWire(r.Benefit))
}

// NewBenefitRecord wraps a Benefit built in code.
func NewBenefitRecord(b Benefit) BenefitRecord {
	return BenefitRecord{Benefit: b}
}

func (w *benefitWire) resolve(raw json.RawMessage) Benefit {
	value := 0.0
	if w.ValuePercent != nil {
		value = *w.ValuePercent
	}

	switch {
	case w.Type == BenefitTypePercentDiscountOrPoints:
		b := PercentDiscountOrPoints{ValuePercent: value}
		if w.Limit != nil {
			b.LimitCount = w.Limit.Count
		}
		return b
	case w.Type == BenefitTypePercentDiscount:
		return PercentDiscount{ValuePercent: value}
	case w.Movie != nil:
		return MovieBenefit{
			FreeTicketsPerYear: w.Movie.FreeTicketsPerYear,
			OnePlusOnePerYear:  w.Movie.OnePlusOnePerYear,
		}
	case w.Ticket != nil:
		return TicketBenefit{
			MemberPercent:     w.Ticket.MemberPercent,
			CompanionsCount:   w.Ticket.CompanionsCount,
			CompanionsPercent: w.Ticket.CompanionsPercent,
		}
	default:
		return UnknownBenefit{Raw: raw}
	}
}

func benefitToWire(b Benefit) map[string]interface{} {
	switch v := b.(type) {
	case PercentDiscountOrPoints:
		return map[string]interface{}{
			"type":          BenefitTypePercentDiscountOrPoints,
			"value_percent": v.ValuePercent,
			"limit":         map[string]interface{}{"count": v.LimitCount},
		}
	case PercentDiscount:
		return map[string]interface{}{
			"type":          BenefitTypePercentDiscount,
			"value_percent": v.ValuePercent,
		}
	case MovieBenefit:
		return map[string]interface{}{
			"movie": map[string]interface{}{
				"free_tickets_per_year": v.FreeTicketsPerYear,
				"one_plus_one_per_year": v.OnePlusOnePerYear,
			},
		}
	case TicketBenefit:
		return map[string]interface{}{
			"ticket": map[string]interface{}{
				"member_percent":     v.MemberPercent,
				"companions_count":   v.CompanionsCount,
				"companions_percent": v.CompanionsPercent,
			},
		}
	case UnknownBenefit:
		out := map[string]interface{}{}
		if len(v.Raw) > 0 {
			_ = json.Unmarshal(v.Raw, &out)
		}
		return out
	default:
		return map[string]interface{}{}
	}
}
