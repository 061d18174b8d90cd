package clients

import (
	"context"
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pricing"
)

type ShippingClient struct{ c *Client }

func NewShippingClient(c *Client) *ShippingClient { return &ShippingClient{c: c} }

func (sc *ShippingClient) ListAll(ctx context.Context) ([]pricing.ShippingMethod, error) {
	var out []pricing.ShippingMethod
	if err := sc.c.doJSON(ctx, http.MethodGet, "/api/shipping-methods", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type VoucherClient struct{ c *Client }

func NewVoucherClient(c *Client) *VoucherClient { return &VoucherClient{c: c} }

// ListAvailable returns the caller's usable vouchers. Callers without a
// bearer token, or whom the upstream rejects, get an empty list.
func (vc *VoucherClient) ListAvailable(ctx context.Context) ([]pricing.Voucher, error) {
	if middleware.GetBearerToken(ctx) == "" {
		return []pricing.Voucher{}, nil
	}

	var out []pricing.Voucher
	err := vc.c.doJSON(ctx, http.MethodGet, "/api/vouchers/available", nil, nil, &out)
	var ce *Error
	if errors.As(err, &ce) && (ce.Status == http.StatusUnauthorized || ce.Status == http.StatusForbidden) {
		return []pricing.Voucher{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []pricing.Voucher{}
	}
	return out, nil
}
