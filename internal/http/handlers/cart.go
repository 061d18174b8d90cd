package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type CartHandler struct {
	carts *cart.Manager
	log   *zap.Logger
}

func NewCartHandler(carts *cart.Manager, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: logger}
}

func (h *CartHandler) store(r *http.Request) *cart.Store {
	return h.carts.Store(r.Context(), middleware.GetUserID(r.Context()))
}

func (h *CartHandler) GetCartMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.CartFrom(h.store(r)))
}

func (h *CartHandler) AddItemMe(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if !decode(w, r, &req) {
		return
	}

	s := h.store(r)
	res, err := s.Add(r.Context(), cart.Product{ID: req.ID, Name: req.Name, Image: req.Image, Price: req.Price})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Notice == cart.NoticeAdded {
		status = http.StatusCreated
	}
	writeJSON(w, status, dto.AddCartItemResponse{Notice: string(res.Notice), Cart: dto.CartFrom(s)})
}

func (h *CartHandler) RemoveItemMe(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	if err := s.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CartFrom(s))
}

// ClearMe always answers 200: the cart is empty afterwards even when some
// remote deletes failed, which are listed in the body.
func (h *CartHandler) ClearMe(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	res := s.Clear(r.Context())

	out := dto.ClearCartResponse{Removed: res.Removed, Failed: []dto.FailedDelete{}, Cart: dto.CartFrom(s)}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, dto.FailedDelete{ItemID: f.ItemID, Error: f.Err.Error()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CartHandler) IncreaseQuantityMe(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	id := chi.URLParam(r, "id")
	it, ok := s.IncreaseQuantity(id)
	if !ok {
		middleware.WriteError(w, r, http.StatusNotFound, "item not in cart")
		return
	}
	writeJSON(w, http.StatusOK, dto.QuantityResponse{Item: dto.ItemFrom(it, s.IsSelected(id))})
}

func (h *CartHandler) ToggleMe(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, dto.ToggleResponse{ID: id, Selected: s.Toggle(r.Context(), id)})
}

func (h *CartHandler) SelectAllMe(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.SelectAll(r.Context())
	writeJSON(w, http.StatusOK, dto.CartFrom(s))
}

func (h *CartHandler) DeselectAllMe(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.DeselectAll(r.Context())
	writeJSON(w, http.StatusOK, dto.CartFrom(s))
}
