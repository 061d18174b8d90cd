package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validate"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst and validates it. It writes the 400
// itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Check(dst); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeServiceError maps domain and upstream errors to a response. Upstream
// 4xx statuses pass through; everything else from upstream is a 502.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *clients.Error
	switch {
	case errors.Is(err, checkout.ErrNothingSelected),
		errors.Is(err, checkout.ErrMissingAddress),
		errors.Is(err, checkout.ErrMissingPayment):
		middleware.WriteError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrVoucherNotFound),
		errors.Is(err, checkout.ErrVoucherExpired):
		middleware.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &ce):
		status := http.StatusBadGateway
		if ce.Status >= 400 && ce.Status < 500 {
			status = ce.Status
		}
		middleware.WriteError(w, r, status, ce.Message)
	default:
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
