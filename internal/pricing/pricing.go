// Package pricing computes cart line and checkout totals. Amounts are integer
// currency units; every intermediate figure is rounded half-up before it is summed.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type LineSubtotal struct {
	Base       int64 `json:"base"`
	AddOnTotal int64 `json:"addOnTotal"`
	Total      int64 `json:"total"`
	ExtraSLA   int   `json:"extraSla"`
}

// Line prices one unit of p with the selected add-ons. Ids that do not match
// an add-on of p are skipped, and each id counts once.
func Line(p domain.Product, selected []string) LineSubtotal {
	out := LineSubtotal{Base: p.Price}
	seen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		a, ok := p.AddOn(id)
		if !ok {
			continue
		}
		out.AddOnTotal += a.Price
		out.ExtraSLA += a.ExtraSLADays
	}
	out.Total = out.Base + out.AddOnTotal
	return out
}

// LineETA is the days-to-deliver of one line: zero for instant delivery,
// otherwise the custom ETA plus the extra SLA of the selected add-ons.
func LineETA(p domain.Product, selected []string) int {
	if p.DeliveryMode != domain.DeliveryCustom {
		return 0
	}
	eta := 0
	if p.CustomOrder != nil {
		eta = p.CustomOrder.ETADays
	}
	return eta + Line(p, selected).ExtraSLA
}

type Rates struct {
	PlatformFee decimal.Decimal
	Tax         decimal.Decimal
}

var DefaultRates = Rates{
	PlatformFee: decimal.RequireFromString("0.10"),
	Tax:         decimal.RequireFromString("0.11"),
}

// NewRates parses fee and tax rates such as "0.10".
func NewRates(fee, tax string) (Rates, error) {
	f, err := decimal.NewFromString(fee)
	if err != nil {
		return Rates{}, err
	}
	t, err := decimal.NewFromString(tax)
	if err != nil {
		return Rates{}, err
	}
	return Rates{PlatformFee: f, Tax: t}, nil
}

type Preview struct {
	Subtotal      int64 `json:"subtotal"`
	PlatformFee   int64 `json:"platformFee"`
	Tax           int64 `json:"tax"`
	GrandTotal    int64 `json:"grandTotal"`
	EstimatedDays int   `json:"estimatedDays"`
}

// Preview sums lineTotals, which callers have already multiplied by quantity.
// Tax is charged on subtotal plus fee. etaDays is passed through unchanged.
func (r Rates) Preview(lineTotals []int64, etaDays int) Preview {
	var subtotal int64
	for _, t := range lineTotals {
		subtotal += t
	}
	fee := roundHalfUp(decimal.NewFromInt(subtotal).Mul(r.PlatformFee))
	tax := roundHalfUp(decimal.NewFromInt(subtotal + fee).Mul(r.Tax))
	return Preview{
		Subtotal:      subtotal,
		PlatformFee:   fee,
		Tax:           tax,
		GrandTotal:    subtotal + fee + tax,
		EstimatedDays: etaDays,
	}
}

func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
