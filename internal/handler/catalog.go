package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/rs/zerolog"
)

// CatalogHandler serves the read-only menu the register sells from.
type CatalogHandler struct {
	catalog catalog.Catalog
	logger  zerolog.Logger
}

func NewCatalogHandler(c catalog.Catalog, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, logger: logger}
}

// RegisterRoutes is expected to be mounted at /outlets/{oid}/catalog.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{cid}/products", h.ListCategoryProducts)
	r.Get("/products", h.ListProducts)
	r.Get("/products/{pid}/modifiers", h.ListModifiers)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}

	categories, err := h.catalog.Categories(r.Context(), oid)
	if err != nil {
		h.logger.Error().Err(err).Msg("list categories")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "cid"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	products, err := h.catalog.ProductsByCategory(r.Context(), oid, categoryID)
	if err != nil {
		h.logger.Error().Err(err).Int64("category_id", categoryID).Msg("list category products")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// ListProducts returns every product of the outlet, or the search results
// for ?q= ranked by match quality.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}

	products, err := h.catalog.Products(r.Context(), oid)
	if err != nil {
		h.logger.Error().Err(err).Msg("list products")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		products = catalog.Search(products, q)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) ListModifiers(w http.ResponseWriter, r *http.Request) {
	oid, ok := outletID(w, r)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if _, err := h.catalog.Product(r.Context(), oid, productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error().Err(err).Int64("product_id", productID).Msg("get product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	modifiers, err := h.catalog.ForProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error().Err(err).Int64("product_id", productID).Msg("list modifiers")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if modifiers == nil {
		modifiers = []catalog.Modifier{}
	}
	writeJSON(w, http.StatusOK, modifiers)
}
