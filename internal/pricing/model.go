package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money is an amount in the smallest currency unit.
type Money = int64

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
	DiscountShipping   DiscountType = "shipping"
)

func ParseDiscountType(s string) (DiscountType, error) {
	switch t := DiscountType(strings.ToLower(strings.TrimSpace(s))); t {
	case DiscountFixed, DiscountPercentage, DiscountShipping:
		return t, nil
	default:
		return "", fmt.Errorf("unknown discount type %q", s)
	}
}

type ShippingMethod struct {
	MethodID int64  `json:"methodId"`
	Name     string `json:"name"`
	Fee      Money  `json:"fee"`
}

type Voucher struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	MinOrderAmount Money           `json:"minOrderAmount"`
	DiscountType   DiscountType    `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	ExpiryDate     time.Time       `json:"expiryDate"`
}

// Expired reports whether the voucher is past its expiry date. A zero expiry never expires.
func (v Voucher) Expired(now time.Time) bool {
	return !v.ExpiryDate.IsZero() && now.After(v.ExpiryDate)
}

// Priced is anything that contributes a line price to a subtotal.
type Priced interface {
	LinePrice() Money
}

// Result is derived on every call and never stored.
type Result struct {
	Subtotal     Money `json:"subtotal"`
	Discount     Money `json:"discount"`
	ShippingCost Money `json:"shippingCost"`
	GrandTotal   Money `json:"grandTotal"`
}
