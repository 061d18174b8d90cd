package dto

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pricing"
)

type Voucher struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	MinOrderAmount int64     `json:"minOrderAmount"`
	DiscountType   string    `json:"discountType"`
	DiscountValue  string    `json:"discountValue"`
	ExpiryDate     time.Time `json:"expiryDate,omitzero"`
}

type CheckoutOptions struct {
	ShippingMethods []pricing.ShippingMethod `json:"shippingMethods"`
	Vouchers        []Voucher                `json:"vouchers"`
}

type QuoteRequest struct {
	ShippingMethodID int64  `json:"shippingMethodId" validate:"gte=0"`
	VoucherCode      string `json:"voucherCode" validate:"max=64"`
}

type Quote struct {
	Subtotal         int64  `json:"subtotal"`
	Discount         int64  `json:"discount"`
	ShippingCost     int64  `json:"shippingCost"`
	GrandTotal       int64  `json:"grandTotal"`
	Shortfall        int64  `json:"shortfall"`
	ShippingMethodID int64  `json:"shippingMethodId"`
	VoucherID        int64  `json:"voucherId"`
	VoucherCode      string `json:"voucherCode,omitempty"`
	ItemCount        int    `json:"itemCount"`
}

type CheckoutRequest struct {
	ShippingMethodID int64  `json:"shippingMethodId" validate:"gte=0"`
	VoucherCode      string `json:"voucherCode" validate:"max=64"`
	ShippingAddress  string `json:"shippingAddress" validate:"required,max=512"`
	PaymentMethod    string `json:"paymentMethod" validate:"required,max=32"`
}

type CheckoutResponse struct {
	OrderID    string `json:"orderId,omitempty"`
	PaymentURL string `json:"paymentUrl"`
	Quote      Quote  `json:"quote"`
}

func VouchersFrom(vs []pricing.Voucher) []Voucher {
	out := make([]Voucher, 0, len(vs))
	for _, v := range vs {
		out = append(out, Voucher{
			ID:             v.ID,
			Code:           v.Code,
			MinOrderAmount: v.MinOrderAmount,
			DiscountType:   string(v.DiscountType),
			DiscountValue:  v.DiscountValue.String(),
			ExpiryDate:     v.ExpiryDate,
		})
	}
	return out
}

func QuoteFrom(sess *checkout.Session, q checkout.Quote, items int) Quote {
	out := Quote{
		Subtotal:         q.Subtotal,
		Discount:         q.Discount,
		ShippingCost:     q.ShippingCost,
		GrandTotal:       q.GrandTotal,
		Shortfall:        q.Shortfall,
		ShippingMethodID: sess.ShippingMethodID(),
		VoucherID:        q.VoucherID,
		ItemCount:        items,
	}
	if v := sess.Voucher(); v != nil {
		out.VoucherCode = v.Code
	}
	return out
}
