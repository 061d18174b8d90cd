package cart

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pricing"
)

// Item is one product line in a cart. Quantity is always 1; the price is
// captured when the line is added and never refreshed.
type Item struct {
	ID           string        `json:"id"`
	RemoteLineID string        `json:"remoteLineId,omitempty"`
	Name         string        `json:"name"`
	Image        string        `json:"image,omitempty"`
	Price        pricing.Money `json:"price"`
	Quantity     int           `json:"quantity"`
	State        LineState     `json:"state"`
}

func (it Item) LinePrice() pricing.Money { return it.Price }

// Product is what a caller asks to add.
type Product struct {
	ID    string
	Name  string
	Image string
	Price pricing.Money
}

// RemoteLine is the server-side order-item record mirroring an Item.
type RemoteLine struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
}

type CreateResult struct {
	Line RemoteLine
	// Duplicate is set when the product already had a remote line and nothing was created.
	Duplicate bool
}

// Synchronizer mirrors cart lines to the remote order-item resource.
type Synchronizer interface {
	CreateRemoteLine(ctx context.Context, username, productID string) (CreateResult, error)
	ListRemoteLines(ctx context.Context, username string) ([]RemoteLine, error)
	DeleteRemoteLine(ctx context.Context, lineID string) error
}

// Storage is durable key-value persistence. Get returns nil, nil on a miss.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

type Notice string

const (
	NoticeAdded         Notice = "added"
	NoticeAlreadyInCart Notice = "already in cart"
	NoticeAlreadyRemote Notice = "already in remote cart"
	NoticeIgnored       Notice = "ignored"
)

type AddResult struct {
	Item   Item
	Notice Notice
}

// ClearResult lists remote lines whose delete failed. The local cart is empty either way.
type ClearResult struct {
	Removed int
	Failed  []FailedDelete
}

type FailedDelete struct {
	ItemID       string
	RemoteLineID string
	Err          error
}
