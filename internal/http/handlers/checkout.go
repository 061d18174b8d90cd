package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type CheckoutHandler struct {
	svc   *checkout.Service
	carts *cart.Manager
	log   *zap.Logger
}

func NewCheckoutHandler(svc *checkout.Service, carts *cart.Manager, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, carts: carts, log: logger}
}

func (h *CheckoutHandler) OptionsMe(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Begin(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutOptions{
		ShippingMethods: sess.ShippingMethods(),
		Vouchers:        dto.VouchersFrom(sess.Vouchers()),
	})
}

// session builds a checkout session with the caller's choices applied.
func (h *CheckoutHandler) session(r *http.Request, methodID int64, voucherCode string) (*checkout.Session, error) {
	sess, err := h.svc.Begin(r.Context())
	if err != nil {
		return nil, err
	}
	sess.SelectShippingMethod(methodID)
	if code := strings.TrimSpace(voucherCode); code != "" {
		if _, err := sess.ApplyVoucher(code); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (h *CheckoutHandler) QuoteMe(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.session(r, req.ShippingMethodID, req.VoucherCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	items := h.carts.Store(r.Context(), middleware.GetUserID(r.Context())).Selected()
	writeJSON(w, http.StatusOK, dto.QuoteFrom(sess, sess.Quote(items), len(items)))
}

func (h *CheckoutHandler) SubmitMe(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.session(r, req.ShippingMethodID, req.VoucherCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	store := h.carts.Store(r.Context(), middleware.GetUserID(r.Context()))
	sub, err := h.svc.Submit(r.Context(), sess, store, checkout.Details{
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CheckoutResponse{
		OrderID:    sub.OrderID,
		PaymentURL: sub.PaymentURL,
		Quote:      dto.QuoteFrom(sess, sub.Quote, len(store.Selected())),
	})
}
