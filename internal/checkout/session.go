package checkout

import (
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pricing"
)

// Session is one caller's checkout choices over a catalog snapshot. It is not
// safe for concurrent use.
type Session struct {
	cfg      pricing.Config
	now      func() time.Time
	methods  []pricing.ShippingMethod
	vouchers []pricing.Voucher

	methodID int64
	voucher  *pricing.Voucher
}

type Quote struct {
	pricing.Result
	// Shortfall is what the selection still needs to reach the voucher minimum.
	Shortfall pricing.Money `json:"shortfall"`
	// VoucherID is the applied voucher when it counts toward this quote, else 0.
	VoucherID int64 `json:"voucherId"`
}

func (s *Session) ShippingMethods() []pricing.ShippingMethod { return s.methods }

func (s *Session) Vouchers() []pricing.Voucher { return s.vouchers }

// SelectShippingMethod keeps ids missing from the catalog; pricing falls back
// to the default fee for them.
func (s *Session) SelectShippingMethod(id int64) { s.methodID = id }

func (s *Session) ShippingMethodID() int64 { return s.methodID }

func (s *Session) ApplyVoucher(code string) (pricing.Voucher, error) {
	code = strings.TrimSpace(code)
	for _, v := range s.vouchers {
		if code == "" || !strings.EqualFold(v.Code, code) {
			continue
		}
		if v.Expired(s.now()) {
			return pricing.Voucher{}, ErrVoucherExpired
		}
		applied := v
		s.voucher = &applied
		return applied, nil
	}
	return pricing.Voucher{}, ErrVoucherNotFound
}

func (s *Session) RemoveVoucher() { s.voucher = nil }

func (s *Session) Voucher() *pricing.Voucher { return s.voucher }

func (s *Session) Quote(items []cart.Item) Quote {
	res := pricing.ComputeTotals(s.cfg, items, s.methods, s.methodID, s.voucher)
	q := Quote{
		Result:    res,
		Shortfall: pricing.VoucherShortfall(res.Subtotal, s.voucher),
	}
	if s.voucher != nil && q.Shortfall == 0 {
		q.VoucherID = s.voucher.ID
	}
	return q
}
