package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/catalog"
	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var ErrCatalogUnavailable = errors.New("catalog service unavailable")

type CatalogService struct {
	products   *db.ProductStore
	categories *db.CategoryStore
	brands     *db.BrandStore
	coupons    *db.CouponStore
	reviews    *db.ReviewStore
	logger     *slog.Logger
}

func NewCatalogService(products *db.ProductStore, categories *db.CategoryStore, brands *db.BrandStore, coupons *db.CouponStore, reviews *db.ReviewStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		brands:     brands,
		coupons:    coupons,
		reviews:    reviews,
		logger:     logger,
	}
}

// BrowseInput narrows the product listing by slug rather than ID, matching
// the URL surface.
type BrowseInput struct {
	CategorySlug string
	BrandSlug    string
	Featured     bool
	Search       string
	Limit        int
	Offset       int
}

func (s *CatalogService) Browse(ctx context.Context, input BrowseInput) ([]*models.Product, error) {
	if s == nil || s.products == nil {
		return nil, ErrCatalogUnavailable
	}

	filter := db.ProductFilter{
		Featured: input.Featured,
		Search:   strings.TrimSpace(input.Search),
		Limit:    input.Limit,
		Offset:   input.Offset,
	}

	if slug := strings.TrimSpace(input.CategorySlug); slug != "" {
		category, err := s.categories.GetBySlug(ctx, slug)
		if errors.Is(err, db.ErrNotFound) {
			return []*models.Product{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		filter.CategoryID = category.ID
	}
	if slug := strings.TrimSpace(input.BrandSlug); slug != "" {
		brand, err := s.brands.GetBySlug(ctx, slug)
		if errors.Is(err, db.ErrNotFound) {
			return []*models.Product{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load brand: %w", err)
		}
		filter.BrandID = brand.ID
	}

	return s.products.List(ctx, filter)
}

// ProductDetail bundles everything the product page needs.
type ProductDetail struct {
	Product  *models.Product          `json:"product"`
	Variants []*models.ProductVariant `json:"variants"`
	Reviews  []*models.Review         `json:"reviews"`
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	if s == nil || s.products == nil {
		return nil, ErrCatalogUnavailable
	}

	product, err := s.products.GetBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	variants, err := s.products.VariantsByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	var reviews []*models.Review
	if s.reviews != nil {
		reviews, err = s.reviews.ListApprovedByProduct(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load reviews: %w", err)
		}
	}

	return &ProductDetail{Product: product, Variants: variants, Reviews: reviews}, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	if s == nil || s.categories == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.categories.List(ctx)
}

func (s *CatalogService) Brands(ctx context.Context) ([]*models.Brand, error) {
	if s == nil || s.brands == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.brands.List(ctx)
}

// AdminProducts lists products without the storefront availability filter.
func (s *CatalogService) AdminProducts(ctx context.Context, input BrowseInput) ([]*models.Product, error) {
	if s == nil || s.products == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.products.List(ctx, db.ProductFilter{
		Search:             strings.TrimSpace(input.Search),
		Limit:              input.Limit,
		Offset:             input.Offset,
		IncludeUnavailable: true,
	})
}

// SaveProduct creates or updates a product. Slug falls back to a slugified name.
func (s *CatalogService) SaveProduct(ctx context.Context, product *models.Product) error {
	if s == nil || s.products == nil {
		return ErrCatalogUnavailable
	}
	if product == nil {
		return UserError{Message: "A product is required"}
	}

	product.Name = strings.TrimSpace(product.Name)
	product.SKU = strings.ToUpper(strings.TrimSpace(product.SKU))
	product.Slug = strings.TrimSpace(product.Slug)
	if product.Name == "" {
		return UserError{Message: "Product name is required"}
	}
	if product.SKU == "" {
		return UserError{Message: "Product SKU is required"}
	}
	if product.PriceKobo <= 0 {
		return UserError{Message: "Product price must be greater than zero"}
	}
	if product.StockQuantity < 0 {
		return UserError{Message: "Stock quantity cannot be negative"}
	}
	if product.Slug == "" {
		product.Slug = slugify(product.Name)
	}

	if err := s.products.Upsert(ctx, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	logging.FromContext(ctx, s.logger).Info("product saved", "product_id", product.ID, "sku", product.SKU)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.products == nil {
		return ErrCatalogUnavailable
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	logging.FromContext(ctx, s.logger).Info("product deleted", "product_id", id)
	return nil
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Import parses, validates, and loads a catalog file. Admin only.
func (s *CatalogService) Import(ctx context.Context, content []byte) (*catalog.LoadResult, error) {
	if s == nil || s.products == nil || s.categories == nil || s.brands == nil || s.coupons == nil {
		return nil, ErrCatalogUnavailable
	}

	parser := catalog.NewParser()
	file, err := parser.Parse(content)
	if err != nil {
		return nil, UserError{Message: fmt.Sprintf("Catalog file is not valid YAML: %v", err)}
	}
	if err := catalog.NewValidator().Validate(file); err != nil {
		return nil, UserError{Message: fmt.Sprintf("Catalog file is invalid: %v", err)}
	}

	loader := catalog.NewLoader(s.categories, s.brands, s.products, s.coupons)
	result, err := loader.Load(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	logging.FromContext(ctx, s.logger).Info("catalog imported",
		"categories", result.Categories,
		"brands", result.Brands,
		"products", result.Products,
		"coupons", result.Coupons,
	)
	return result, nil
}
