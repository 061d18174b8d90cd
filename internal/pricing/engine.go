// Package pricing computes checkout totals from the selected cart lines,
// the shipping catalog and an optional voucher. Everything here is pure.
package pricing

import "github.com/shopspring/decimal"

// Config is the only place the shipping constants are defined.
type Config struct {
	FreeShippingThreshold Money
	DefaultShippingFee    Money
}

func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: 600000,
		DefaultShippingFee:    30000,
	}
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals prices the selection. A voucher below its minimum counts for
// nothing, shipping vouchers included. The shipping voucher override is checked
// before the free-shipping threshold, and the threshold before the method fee.
func ComputeTotals[T Priced](cfg Config, items []T, catalog []ShippingMethod, methodID int64, v *Voucher) Result {
	var res Result
	for _, it := range items {
		res.Subtotal += it.LinePrice()
	}

	res.Discount = discount(res.Subtotal, v)
	res.ShippingCost = shippingCost(cfg, res.Subtotal, res.Discount, catalog, methodID, v)

	res.GrandTotal = res.Subtotal - res.Discount + res.ShippingCost
	if res.GrandTotal < 0 {
		res.GrandTotal = 0
	}
	return res
}

func discount(subtotal Money, v *Voucher) Money {
	if !applies(subtotal, v) {
		return 0
	}

	var d Money
	switch v.DiscountType {
	case DiscountFixed:
		d = v.DiscountValue.IntPart()
	case DiscountPercentage:
		d = decimal.NewFromInt(subtotal).Mul(v.DiscountValue).Div(hundred).IntPart()
	default:
		return 0
	}

	if d < 0 {
		return 0
	}
	if d > subtotal {
		return subtotal
	}
	return d
}

func shippingCost(cfg Config, subtotal, discount Money, catalog []ShippingMethod, methodID int64, v *Voucher) Money {
	if applies(subtotal, v) && v.DiscountType == DiscountShipping {
		return 0
	}
	if subtotal-discount >= cfg.FreeShippingThreshold {
		return 0
	}
	if m, ok := findMethod(catalog, methodID); ok {
		return m.Fee
	}
	return cfg.DefaultShippingFee
}

func applies(subtotal Money, v *Voucher) bool {
	return v != nil && subtotal >= v.MinOrderAmount
}

func findMethod(catalog []ShippingMethod, methodID int64) (ShippingMethod, bool) {
	if methodID == 0 {
		return ShippingMethod{}, false
	}
	for _, m := range catalog {
		if m.MethodID == methodID {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

// VoucherShortfall is how much the subtotal is below the voucher minimum, or 0.
func VoucherShortfall(subtotal Money, v *Voucher) Money {
	if v == nil || subtotal >= v.MinOrderAmount {
		return 0
	}
	return v.MinOrderAmount - subtotal
}
