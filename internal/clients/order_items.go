package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

type OrderItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
}

type OrderItemClient struct{ c *Client }

func NewOrderItemClient(c *Client) *OrderItemClient { return &OrderItemClient{c: c} }

func (oc *OrderItemClient) List(ctx context.Context, username string) ([]OrderItem, error) {
	var out []OrderItem
	if err := oc.c.doJSON(ctx, http.MethodGet, "/api/order-items", url.Values{"username": {username}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (oc *OrderItemClient) Create(ctx context.Context, username, productID string) (OrderItem, error) {
	in := struct {
		Username  string `json:"username"`
		ProductID string `json:"productId"`
	}{username, productID}

	var out OrderItem
	if err := oc.c.doJSON(ctx, http.MethodPost, "/api/order-items", nil, in, &out); err != nil {
		return OrderItem{}, err
	}
	if out.ProductID == "" {
		out.ProductID = productID
	}
	return out, nil
}

// Delete removes a remote line. A 404 means it is already gone.
func (oc *OrderItemClient) Delete(ctx context.Context, id string) error {
	err := oc.c.doJSON(ctx, http.MethodDelete, "/api/order-items/"+url.PathEscape(id), nil, nil, nil)
	var ce *Error
	if errors.As(err, &ce) && ce.Status == http.StatusNotFound {
		return nil
	}
	return err
}
