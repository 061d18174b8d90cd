package pricing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type line Money

func (l line) LinePrice() Money { return Money(l) }

var catalog = []ShippingMethod{
	{MethodID: 1, Name: "standard", Fee: 30000},
	{MethodID: 2, Name: "express", Fee: 70000},
}

func fixed(value, min int64) *Voucher {
	return &Voucher{ID: 7, Code: "FIX", DiscountType: DiscountFixed, DiscountValue: decimal.NewFromInt(value), MinOrderAmount: min}
}

func TestComputeTotals(t *testing.T) {
	cfg := DefaultConfig()

	tests := map[string]struct {
		items    []line
		methodID int64
		voucher  *Voucher
		want     Result
	}{
		"no voucher uses method fee": {
			items:    []line{100000},
			methodID: 1,
			want:     Result{Subtotal: 100000, ShippingCost: 30000, GrandTotal: 130000},
		},
		"fixed voucher above threshold ships free": {
			items:    []line{500000, 400000},
			methodID: 1,
			voucher:  fixed(50000, 899000),
			want:     Result{Subtotal: 900000, Discount: 50000, GrandTotal: 850000},
		},
		"shipping voucher overrides method fee": {
			items:    []line{120000},
			methodID: 2,
			voucher:  &Voucher{DiscountType: DiscountShipping, MinOrderAmount: 0},
			want:     Result{Subtotal: 120000, GrandTotal: 120000},
		},
		"shipping voucher below minimum pays the method fee": {
			items:    []line{100000},
			methodID: 2,
			voucher:  &Voucher{DiscountType: DiscountShipping, MinOrderAmount: 500000},
			want:     Result{Subtotal: 100000, ShippingCost: 70000, GrandTotal: 170000},
		},
		"shipping voucher at its minimum ships free": {
			items:    []line{500000},
			methodID: 2,
			voucher:  &Voucher{DiscountType: DiscountShipping, MinOrderAmount: 500000},
			want:     Result{Subtotal: 500000, GrandTotal: 500000},
		},
		"discount capped at subtotal": {
			items:    []line{10000},
			methodID: 1,
			voucher:  fixed(50000, 0),
			want:     Result{Subtotal: 10000, Discount: 10000, ShippingCost: 30000, GrandTotal: 30000},
		},
		"voucher below minimum contributes nothing": {
			items:    []line{100000},
			methodID: 1,
			voucher:  &Voucher{DiscountType: DiscountPercentage, DiscountValue: decimal.NewFromInt(10), MinOrderAmount: 500000},
			want:     Result{Subtotal: 100000, ShippingCost: 30000, GrandTotal: 130000},
		},
		"percentage voucher": {
			items:    []line{200000},
			methodID: 2,
			voucher:  &Voucher{DiscountType: DiscountPercentage, DiscountValue: decimal.NewFromInt(15)},
			want:     Result{Subtotal: 200000, Discount: 30000, ShippingCost: 70000, GrandTotal: 240000},
		},
		"percentage truncates to the unit": {
			items:    []line{999},
			methodID: 1,
			voucher:  &Voucher{DiscountType: DiscountPercentage, DiscountValue: decimal.RequireFromString("12.5")},
			want:     Result{Subtotal: 999, Discount: 124, ShippingCost: 30000, GrandTotal: 30875},
		},
		"percentage over one hundred is capped": {
			items:    []line{5000},
			methodID: 1,
			voucher:  &Voucher{DiscountType: DiscountPercentage, DiscountValue: decimal.NewFromInt(150)},
			want:     Result{Subtotal: 5000, Discount: 5000, ShippingCost: 30000, GrandTotal: 30000},
		},
		"threshold applies after discount": {
			items:    []line{620000},
			methodID: 1,
			voucher:  fixed(30000, 0),
			want:     Result{Subtotal: 620000, Discount: 30000, ShippingCost: 30000, GrandTotal: 620000},
		},
		"threshold boundary is inclusive": {
			items:    []line{600000},
			methodID: 2,
			want:     Result{Subtotal: 600000, GrandTotal: 600000},
		},
		"unresolved method falls back to default fee": {
			items:    []line{100000},
			methodID: 99,
			want:     Result{Subtotal: 100000, ShippingCost: 30000, GrandTotal: 130000},
		},
		"no method selected falls back to default fee": {
			items: []line{50000},
			want:  Result{Subtotal: 50000, ShippingCost: 30000, GrandTotal: 80000},
		},
		"empty selection totals to shipping": {
			methodID: 2,
			want:     Result{ShippingCost: 70000, GrandTotal: 70000},
		},
		"empty selection with shipping voucher": {
			methodID: 2,
			voucher:  &Voucher{DiscountType: DiscountShipping},
			want:     Result{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := ComputeTotals(cfg, tc.items, catalog, tc.methodID, tc.voucher)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("totals mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeTotals_RemovingVoucherRestoresBaseline(t *testing.T) {
	cfg := DefaultConfig()
	items := []line{100000}

	with := ComputeTotals(cfg, items, catalog, 2, &Voucher{DiscountType: DiscountShipping})
	without := ComputeTotals(cfg, items, catalog, 2, nil)

	assert.Equal(t, Money(0), with.ShippingCost)
	assert.Equal(t, Result{Subtotal: 100000, ShippingCost: 70000, GrandTotal: 170000}, without)
}

func TestComputeTotals_CustomConfig(t *testing.T) {
	cfg := Config{FreeShippingThreshold: 100, DefaultShippingFee: 5}

	got := ComputeTotals(cfg, []line{99}, nil, 0, nil)
	assert.Equal(t, Result{Subtotal: 99, ShippingCost: 5, GrandTotal: 104}, got)

	got = ComputeTotals(cfg, []line{100}, nil, 0, nil)
	assert.Equal(t, Result{Subtotal: 100, GrandTotal: 100}, got)
}

func TestVoucherShortfall(t *testing.T) {
	assert.Equal(t, Money(0), VoucherShortfall(100, nil))
	assert.Equal(t, Money(400000), VoucherShortfall(100000, &Voucher{MinOrderAmount: 500000}))
	assert.Equal(t, Money(0), VoucherShortfall(500000, &Voucher{MinOrderAmount: 500000}))
}

func TestVoucherExpired(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, Voucher{}.Expired(now))
	assert.True(t, Voucher{ExpiryDate: now.Add(-time.Hour)}.Expired(now))
	assert.False(t, Voucher{ExpiryDate: now.Add(time.Hour)}.Expired(now))
}

func TestParseDiscountType(t *testing.T) {
	got, err := ParseDiscountType(" Percentage ")
	assert.NoError(t, err)
	assert.Equal(t, DiscountPercentage, got)

	_, err = ParseDiscountType("bogo")
	assert.Error(t, err)
}
