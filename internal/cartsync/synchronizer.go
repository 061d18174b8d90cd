// Package cartsync mirrors local cart lines to the remote order-item resource.
// It never retries; every failure leaves as a *clients.Error.
package cartsync

import (
	"context"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

const (
	msgListFailed   = "could not load your cart from the server"
	msgCreateFailed = "could not add the item to your cart"
	msgDeleteFailed = "could not remove the item from your cart"
)

// OrderItems is the remote order-item resource.
type OrderItems interface {
	List(ctx context.Context, username string) ([]clients.OrderItem, error)
	Create(ctx context.Context, username, productID string) (clients.OrderItem, error)
	Delete(ctx context.Context, id string) error
}

type Synchronizer struct {
	items OrderItems
	log   *zap.Logger
}

func New(items OrderItems, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{items: items, log: logger}
}

var _ cart.Synchronizer = (*Synchronizer)(nil)

// CreateRemoteLine checks the user's existing lines first so a retried add
// never produces a second remote line for the same product.
func (s *Synchronizer) CreateRemoteLine(ctx context.Context, username, productID string) (cart.CreateResult, error) {
	lines, err := s.ListRemoteLines(ctx, username)
	if err != nil {
		return cart.CreateResult{}, err
	}
	for _, l := range lines {
		if l.ProductID == productID {
			s.log.Info("remote line already exists", zap.String("user", username), zap.String("product", productID), zap.String("line", l.ID))
			return cart.CreateResult{Line: l, Duplicate: true}, nil
		}
	}

	created, err := s.items.Create(ctx, username, productID)
	if err != nil {
		return cart.CreateResult{}, clients.Normalize(err, msgCreateFailed)
	}
	return cart.CreateResult{Line: cart.RemoteLine{ID: created.ID, ProductID: created.ProductID}}, nil
}

func (s *Synchronizer) ListRemoteLines(ctx context.Context, username string) ([]cart.RemoteLine, error) {
	items, err := s.items.List(ctx, username)
	if err != nil {
		return nil, clients.Normalize(err, msgListFailed)
	}
	out := make([]cart.RemoteLine, 0, len(items))
	for _, it := range items {
		out = append(out, cart.RemoteLine{ID: it.ID, ProductID: it.ProductID})
	}
	return out, nil
}

// DeleteRemoteLine is idempotent: the client already maps 404 to success.
func (s *Synchronizer) DeleteRemoteLine(ctx context.Context, lineID string) error {
	if err := s.items.Delete(ctx, lineID); err != nil {
		return clients.Normalize(err, msgDeleteFailed)
	}
	return nil
}
