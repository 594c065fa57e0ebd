package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aniscentsapp/aniscents/internal/services"
)

const defaultPageSize = 24

// ListProducts serves the storefront product listing with optional filters.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	input := browseInputFromQuery(r.URL.Query())

	products, err := h.catalogService.Browse(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct serves a single product with variants and approved reviews.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	detail, err := h.catalogService.ProductBySlug(r.Context(), slug)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetCategory serves a category and its products.
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	input := browseInputFromQuery(r.URL.Query())
	input.CategorySlug = slug
	products, err := h.catalogService.Browse(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"category": slug,
		"products": products,
		"count":    len(products),
	})
}

func (h *Handlers) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalogService.Brands(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"brands": brands})
}

func browseInputFromQuery(query url.Values) services.BrowseInput {
	input := services.BrowseInput{
		CategorySlug: strings.TrimSpace(query.Get("category")),
		BrandSlug:    strings.TrimSpace(query.Get("brand")),
		Search:       strings.TrimSpace(query.Get("q")),
		Featured:     query.Get("featured") == "true",
		Limit:        defaultPageSize,
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		input.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset > 0 {
		input.Offset = offset
	}
	return input
}
