package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/handlers"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type Deps struct {
	Logger      *zap.Logger
	CORSOrigins []string
	JWTSecret   string
	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.Limiter

	Carts    *cart.Manager
	Checkout *checkout.Service

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.CORSOrigins))

	health := &handlers.HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Service)
	r.Get("/health/upstreams", health.Upstreams)

	cartH := handlers.NewCartHandler(d.Carts, d.Logger)
	checkoutH := handlers.NewCheckoutHandler(d.Checkout, d.Carts, d.Logger)

	r.Route("/me", func(r chi.Router) {
		r.Use(middleware.Auth(d.JWTSecret, d.Logger))
		if d.Limiter != nil {
			r.Use(middleware.RateLimit(d.Limiter))
		}

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartH.GetCartMe)
			r.Delete("/", cartH.ClearMe)
			r.Post("/items", cartH.AddItemMe)
			r.Delete("/items/{id}", cartH.RemoveItemMe)
			r.Post("/items/{id}/quantity/increase", cartH.IncreaseQuantityMe)
			r.Post("/selection", cartH.SelectAllMe)
			r.Delete("/selection", cartH.DeselectAllMe)
			r.Post("/selection/{id}/toggle", cartH.ToggleMe)
		})

		r.Get("/checkout/options", checkoutH.OptionsMe)
		r.Post("/checkout/quote", checkoutH.QuoteMe)
		r.Post("/checkout", checkoutH.SubmitMe)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
