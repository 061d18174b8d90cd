// Package checkout prices a cart selection against the shipping and voucher
// catalogs and turns it into an order.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pricing"
)

var (
	ErrVoucherNotFound = errors.New("voucher not found")
	ErrVoucherExpired  = errors.New("voucher has expired")
	ErrNothingSelected = errors.New("select at least one item to check out")
	ErrMissingAddress  = errors.New("shipping address is required")
	ErrMissingPayment  = errors.New("payment method is required")
)

const (
	msgShippingFailed = "could not load shipping methods"
	msgOrderFailed    = "could not place your order"
)

const catalogFetchTimeout = 10 * time.Second

type ShippingCatalog interface {
	ListAll(ctx context.Context) ([]pricing.ShippingMethod, error)
}

type VoucherCatalog interface {
	ListAvailable(ctx context.Context) ([]pricing.Voucher, error)
}

type OrderCreator interface {
	Create(ctx context.Context, req clients.CreateOrderRequest) (clients.CreateOrderResponse, error)
}

type Options struct {
	Pricing    pricing.Config
	CatalogTTL time.Duration
	Producer   string
	Now        func() time.Time
}

type Service struct {
	shipping  ShippingCatalog
	vouchers  VoucherCatalog
	orders    OrderCreator
	publisher events.Publisher
	log       *zap.Logger

	cfg      pricing.Config
	ttl      time.Duration
	producer string
	now      func() time.Time

	group     singleflight.Group
	mu        sync.Mutex
	catalog   []pricing.ShippingMethod
	fetchedAt time.Time
}

func NewService(shipping ShippingCatalog, vouchers VoucherCatalog, orders OrderCreator, publisher events.Publisher, logger *zap.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		shipping:  shipping,
		vouchers:  vouchers,
		orders:    orders,
		publisher: publisher,
		log:       logger,
		cfg:       opts.Pricing,
		ttl:       opts.CatalogTTL,
		producer:  opts.Producer,
		now:       opts.Now,
	}
}

// ShippingMethods returns the shipping catalog. Concurrent misses share one
// upstream call and the result is reused for the catalog TTL. The shared call
// carries no caller identity.
func (s *Service) ShippingMethods(ctx context.Context) ([]pricing.ShippingMethod, error) {
	s.mu.Lock()
	if s.catalog != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		out := s.catalog
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	v, err, shared := s.group.Do("shipping-methods", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), catalogFetchTimeout)
		defer cancel()
		methods, err := s.shipping.ListAll(fetchCtx)
		if err != nil {
			return nil, err
		}
		if methods == nil {
			methods = []pricing.ShippingMethod{}
		}
		s.mu.Lock()
		s.catalog, s.fetchedAt = methods, s.now()
		s.mu.Unlock()
		return methods, nil
	})
	if err != nil {
		return nil, clients.Normalize(err, msgShippingFailed)
	}
	if shared {
		s.log.Debug("shipping catalog fetch shared")
	}
	return v.([]pricing.ShippingMethod), nil
}

// Begin loads both catalogs for the caller in ctx. A voucher failure is
// logged and leaves the caller with no vouchers; a shipping failure is returned.
func (s *Service) Begin(ctx context.Context) (*Session, error) {
	var (
		methods  []pricing.ShippingMethod
		vouchers []pricing.Voucher
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		methods, err = s.ShippingMethods(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		vouchers, err = s.vouchers.ListAvailable(gctx)
		if err != nil {
			s.log.Warn("voucher catalog unavailable",
				zap.String("user", middleware.GetUserID(ctx)),
				zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
				zap.Error(err))
			vouchers = []pricing.Voucher{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Session{
		cfg:      s.cfg,
		now:      s.now,
		methods:  methods,
		vouchers: vouchers,
	}, nil
}

type Details struct {
	ShippingAddress string
	PaymentMethod   string
}

type Submission struct {
	OrderID    string
	PaymentURL string
	Quote      Quote
}

// Submit places an order for the store's selected items. The cart is left
// as is whether the order succeeds or not; it is the payment flow's job to
// clear it.
func (s *Service) Submit(ctx context.Context, sess *Session, store *cart.Store, d Details) (Submission, error) {
	items := store.Selected()
	switch {
	case len(items) == 0:
		return Submission{}, ErrNothingSelected
	case d.ShippingAddress == "":
		return Submission{}, ErrMissingAddress
	case d.PaymentMethod == "":
		return Submission{}, ErrMissingPayment
	}

	q := sess.Quote(items)
	req := clients.CreateOrderRequest{
		UserID:           store.Owner(),
		ShippingMethodID: sess.methodID,
		ShippingAddress:  d.ShippingAddress,
		PaymentMethod:    d.PaymentMethod,
		VoucherID:        q.VoucherID,
		Subtotal:         q.Subtotal,
		ProductIDs:       make([]string, 0, len(items)),
	}
	for _, it := range items {
		req.ProductIDs = append(req.ProductIDs, it.ID)
	}

	resp, err := s.orders.Create(ctx, req)
	if err != nil {
		s.log.Warn("order creation failed", zap.String("user", req.UserID), zap.Error(err))
		return Submission{}, clients.Normalize(err, msgOrderFailed)
	}

	s.log.Info("order submitted",
		zap.String("user", req.UserID),
		zap.String("order", resp.OrderID),
		zap.Int("items", len(items)),
		zap.Int64("grand_total", q.GrandTotal))
	s.publishSubmitted(ctx, req, resp, q)

	return Submission{OrderID: resp.OrderID, PaymentURL: resp.PaymentURL, Quote: q}, nil
}

func (s *Service) publishSubmitted(ctx context.Context, req clients.CreateOrderRequest, resp clients.CreateOrderResponse, q Quote) {
	ev, err := events.BuildCheckoutSubmittedEvent(events.CheckoutSubmittedPayload{
		UserID:           req.UserID,
		OrderID:          resp.OrderID,
		ProductIDs:       req.ProductIDs,
		ShippingMethodID: req.ShippingMethodID,
		VoucherID:        req.VoucherID,
		PaymentMethod:    req.PaymentMethod,
		Subtotal:         q.Subtotal,
		Discount:         q.Discount,
		ShippingCost:     q.ShippingCost,
		GrandTotal:       q.GrandTotal,
	}, events.EnvelopeOptions{
		CorrelationID: middleware.GetCorrelationID(ctx),
		Producer:      s.producer,
		Now:           s.now,
	})
	if err == nil {
		err = s.publisher.PublishCheckoutSubmitted(ctx, ev)
	}
	if err != nil {
		s.log.Warn("publish CheckoutSubmitted failed", zap.String("user", req.UserID), zap.Error(err))
	}
}
