package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/adiwp/storescraper/internal/models"
	"github.com/adiwp/storescraper/internal/shipping"
)

type ProductService interface {
	ScrapeProduct(ctx context.Context, url string) (*models.ScrapedProductData, error)
}

type ShippingService interface {
	GetRates(ctx context.Context, address, weight string) ([]models.ShippingOption, error)
}

type Handlers struct {
	products ProductService
	shipping ShippingService
	logger   *slog.Logger
}

func NewHandlers(products ProductService, shipping ShippingService, logger *slog.Logger) *Handlers {
	return &Handlers{
		products: products,
		shipping: shipping,
		logger:   logger,
	}
}

func (h *Handlers) Routes(r chi.Router) {
	r.Get("/product-details", h.GetProductDetails)
	r.Get("/shipping/fee", h.GetShippingFee)
}

// GetProductDetails handles GET /product-details?url=...
func (h *Handlers) GetProductDetails(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.respondError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() {
		h.respondError(w, http.StatusBadRequest, "url must be an absolute URL")
		return
	}

	data, err := h.products.ScrapeProduct(r.Context(), raw)
	if err != nil {
		h.logger.Error("product scrape failed", "url", raw, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to scrape product page: "+err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, data)
}

// GetShippingFee handles GET /shipping/fee?address=...&weight=...
func (h *Handlers) GetShippingFee(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	weight := r.URL.Query().Get("weight")

	options, err := h.shipping.GetRates(r.Context(), address, weight)
	if err != nil {
		h.respondShippingError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, options)
}

// respondShippingError maps the resolver's error taxonomy onto HTTP statuses:
// bad input 400, unresolvable destination 404, upstream failure 500.
func (h *Handlers) respondShippingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shipping.ErrMissingAddress),
		errors.Is(err, shipping.ErrMissingWeight),
		errors.Is(err, shipping.ErrInvalidWeight),
		errors.Is(err, shipping.ErrCityNotResolved):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shipping.ErrDestinationNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("shipping rate lookup failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
