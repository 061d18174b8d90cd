package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pricing"
)

type CreateOrderRequest struct {
	UserID           string        `json:"userId"`
	ShippingMethodID int64         `json:"shippingMethodId"`
	ShippingAddress  string        `json:"shippingAddress"`
	PaymentMethod    string        `json:"paymentMethod"`
	VoucherID        int64         `json:"voucherId"` // 0 = none
	Subtotal         pricing.Money `json:"subtotal"`
	ProductIDs       []string      `json:"productIds"`
}

type CreateOrderResponse struct {
	OrderID    string `json:"orderId,omitempty"`
	PaymentURL string `json:"paymentUrl"`
}

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

func (oc *OrderClient) Create(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	var out CreateOrderResponse
	if err := oc.c.doJSON(ctx, http.MethodPost, "/api/orders", nil, req, &out); err != nil {
		return CreateOrderResponse{}, err
	}
	if out.PaymentURL == "" {
		return CreateOrderResponse{}, &Error{Message: "order created without a payment url", Status: http.StatusBadGateway}
	}
	return out, nil
}
