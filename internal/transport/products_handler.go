// Package transport exposes the HTTP query surface of the product cache.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/auctionsight/auctionsight-backend/internal/market/phase"
	"go.uber.org/zap"
)

// ProductsRepository is the read side of the record store.
type ProductsRepository interface {
	Products(ctx context.Context, network model.Network, filter model.ProductFilter) ([]model.Product, error)
}

// ProductsHandler serves GET /products. Only unresolved auctions are listed;
// the phase filter narrows them to bidding, reveal, or finalize windows.
type ProductsHandler struct {
	repo         ProductsRepository
	network      model.Network
	revealWindow time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewProductsHandler returns a ProductsHandler instance.
func NewProductsHandler(repo ProductsRepository, network model.Network, revealWindow time.Duration, logger *zap.Logger) *ProductsHandler {
	return &ProductsHandler{
		repo:         repo,
		network:      network,
		revealWindow: revealWindow,
		logger:       logger,
		now:          time.Now,
	}
}

// Register mounts the handler's routes on the mux.
func (h *ProductsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /healthz", h.health)
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	query := r.URL.Query()

	filter := model.ProductFilter{Status: model.StatusActive}

	// A category filter always lists open auctions; productStatus only
	// applies without one, matching the original endpoint's precedence.
	selected := phase.Open
	if category := query.Get("category"); category != "" {
		filter.Category = category
	} else {
		selected = phase.Parse(query.Get("productStatus"))
	}
	filter.EndTimeAfter, filter.EndTimeBefore = phase.TimeBounds(selected, now, h.revealWindow)

	products, err := h.repo.Products(r.Context(), h.network, filter)
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		http.Error(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		h.logger.Error("encode products failed", zap.Error(err))
	}
}

func (h *ProductsHandler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
