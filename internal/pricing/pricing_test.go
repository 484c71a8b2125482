package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func bundle() domain.Product {
	return domain.Product{
		ID:           "landing-page",
		Price:        1_500_000,
		DeliveryMode: domain.DeliveryCustom,
		CustomOrder:  &domain.CustomOrder{ETADays: 7},
		AddOns: []domain.AddOn{
			{ID: "A", Name: "SEO", Price: 500_000, ExtraSLADays: 2},
			{ID: "B", Name: "CMS", Price: 900_000, ExtraSLADays: 3},
		},
	}
}

func TestLine_SingleAddOn(t *testing.T) {
	got := Line(bundle(), []string{"A"})
	assert.Equal(t, LineSubtotal{Base: 1_500_000, AddOnTotal: 500_000, Total: 2_000_000, ExtraSLA: 2}, got)
}

func TestLine_BothAddOns(t *testing.T) {
	got := Line(bundle(), []string{"A", "B"})
	assert.Equal(t, int64(1_500_000), got.Base)
	assert.Equal(t, int64(1_400_000), got.AddOnTotal)
	assert.Equal(t, int64(2_900_000), got.Total)
	assert.Equal(t, 5, got.ExtraSLA)
}

func TestLine_UnknownAndDuplicateIDs(t *testing.T) {
	got := Line(bundle(), []string{"ghost", "A", "A"})
	assert.Equal(t, int64(2_000_000), got.Total)

	got = Line(bundle(), nil)
	assert.Equal(t, LineSubtotal{Base: 1_500_000, Total: 1_500_000}, got)
}

func TestLineETA(t *testing.T) {
	p := bundle()
	assert.Equal(t, 12, LineETA(p, []string{"A", "B"}))
	assert.Equal(t, 7, LineETA(p, nil))

	p.DeliveryMode = domain.DeliveryInstant
	assert.Equal(t, 0, LineETA(p, []string{"A", "B"}))
}

func TestPreview_FeeThenTax(t *testing.T) {
	got := DefaultRates.Preview([]int64{2_000_000}, 9)
	assert.Equal(t, Preview{
		Subtotal:      2_000_000,
		PlatformFee:   200_000,
		Tax:           242_000,
		GrandTotal:    2_442_000,
		EstimatedDays: 9,
	}, got)
}

func TestPreview_Empty(t *testing.T) {
	assert.Equal(t, Preview{}, DefaultRates.Preview(nil, 0))
}

func TestPreview_RoundsHalfUp(t *testing.T) {
	// fee 0.5 -> 1, tax on 6 at 0.25 = 1.5 -> 2
	r := Rates{PlatformFee: decimal.RequireFromString("0.1"), Tax: decimal.RequireFromString("0.25")}
	got := r.Preview([]int64{2, 3}, 0)
	assert.Equal(t, int64(5), got.Subtotal)
	assert.Equal(t, int64(1), got.PlatformFee)
	assert.Equal(t, int64(2), got.Tax)
	assert.Equal(t, int64(8), got.GrandTotal)
}

func TestNewRates(t *testing.T) {
	r, err := NewRates("0.10", "0.11")
	require.NoError(t, err)
	assert.True(t, r.PlatformFee.Equal(DefaultRates.PlatformFee))
	assert.True(t, r.Tax.Equal(DefaultRates.Tax))

	_, err = NewRates("ten", "0.11")
	assert.Error(t, err)
}
