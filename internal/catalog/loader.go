package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/models"
)

// categoryUpserter and friends are the narrow store surfaces the loader needs.
type categoryUpserter interface {
	Upsert(ctx context.Context, category *models.Category) error
}

type brandUpserter interface {
	Upsert(ctx context.Context, brand *models.Brand) error
}

type productUpserter interface {
	Upsert(ctx context.Context, product *models.Product) error
	UpsertVariant(ctx context.Context, variant *models.ProductVariant) error
}

type couponCreator interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
}

// Loader upserts a parsed catalog file into the database. Existing rows are
// matched by slug, SKU, or code, so reloading the same file is idempotent.
type Loader struct {
	categories categoryUpserter
	brands     brandUpserter
	products   productUpserter
	coupons    couponCreator
}

func NewLoader(categories categoryUpserter, brands brandUpserter, products productUpserter, coupons couponCreator) *Loader {
	return &Loader{
		categories: categories,
		brands:     brands,
		products:   products,
		coupons:    coupons,
	}
}

// LoadResult summarizes what a catalog load touched.
type LoadResult struct {
	Categories int `json:"categories"`
	Brands     int `json:"brands"`
	Products   int `json:"products"`
	Variants   int `json:"variants"`
	Coupons    int `json:"coupons"`
}

func (l *Loader) Load(ctx context.Context, file *CatalogFile) (*LoadResult, error) {
	if file == nil {
		return nil, fmt.Errorf("catalog file is required")
	}

	result := &LoadResult{}

	categoryIDs := make(map[string]uuid.UUID, len(file.Categories))
	for i := range file.Categories {
		cfg := &file.Categories[i]
		category := &models.Category{
			Name:        cfg.Name,
			Slug:        cfg.Slug,
			Description: cfg.Description,
			ParentID:    categoryIDs[cfg.Parent],
			IsActive:    true,
		}
		if err := l.categories.Upsert(ctx, category); err != nil {
			return nil, fmt.Errorf("failed to upsert category %s: %w", cfg.Slug, err)
		}
		categoryIDs[cfg.Slug] = category.ID
		result.Categories++
	}

	brandIDs := make(map[string]uuid.UUID, len(file.Brands))
	for i := range file.Brands {
		cfg := &file.Brands[i]
		brand := &models.Brand{
			Name:        cfg.Name,
			Slug:        cfg.Slug,
			Description: cfg.Description,
			Country:     cfg.Country,
			IsActive:    true,
		}
		if err := l.brands.Upsert(ctx, brand); err != nil {
			return nil, fmt.Errorf("failed to upsert brand %s: %w", cfg.Slug, err)
		}
		brandIDs[cfg.Slug] = brand.ID
		result.Brands++
	}

	productIDs := make(map[string]uuid.UUID, len(file.Products))
	for i := range file.Products {
		cfg := &file.Products[i]
		product := &models.Product{
			Name:              cfg.Name,
			Slug:              cfg.Slug,
			SKU:               cfg.SKU,
			Description:       cfg.Description,
			CategoryID:        categoryIDs[cfg.Category],
			BrandID:           brandIDs[cfg.Brand],
			PriceKobo:         cfg.PriceKobo,
			CompareAtKobo:     cfg.CompareAtKobo,
			StockQuantity:     cfg.StockQuantity,
			LowStockThreshold: cfg.LowStockThreshold,
			Concentration:     cfg.Concentration,
			SizeML:            cfg.SizeML,
			Gender:            cfg.Gender,
			TopNotes:          cfg.TopNotes,
			MiddleNotes:       cfg.MiddleNotes,
			BaseNotes:         cfg.BaseNotes,
			IsAvailable:       cfg.Available,
			IsFeatured:        cfg.Featured,
			IsBestseller:      cfg.Bestseller,
		}
		if err := l.products.Upsert(ctx, product); err != nil {
			return nil, fmt.Errorf("failed to upsert product %s: %w", cfg.SKU, err)
		}
		productIDs[cfg.SKU] = product.ID
		result.Products++

		for j := range cfg.Variants {
			vcfg := &cfg.Variants[j]
			variant := &models.ProductVariant{
				ProductID:     product.ID,
				SKU:           vcfg.SKU,
				SizeML:        vcfg.SizeML,
				Concentration: vcfg.Concentration,
				PriceKobo:     vcfg.PriceKobo,
				StockQuantity: vcfg.StockQuantity,
				IsActive:      true,
			}
			if err := l.products.UpsertVariant(ctx, variant); err != nil {
				return nil, fmt.Errorf("failed to upsert variant %s: %w", vcfg.SKU, err)
			}
			result.Variants++
		}
	}

	for i := range file.Coupons {
		cfg := &file.Coupons[i]
		coupon, err := l.buildCoupon(cfg, productIDs, categoryIDs)
		if err != nil {
			return nil, err
		}

		existing, err := l.coupons.GetByCode(ctx, coupon.Code)
		switch {
		case err == nil:
			coupon.ID = existing.ID
			if err := l.coupons.Update(ctx, coupon); err != nil {
				return nil, fmt.Errorf("failed to update coupon %s: %w", cfg.Code, err)
			}
		default:
			if err := l.coupons.Create(ctx, coupon); err != nil {
				return nil, fmt.Errorf("failed to create coupon %s: %w", cfg.Code, err)
			}
		}
		result.Coupons++
	}

	return result, nil
}

func (l *Loader) buildCoupon(cfg *CouponConfig, productIDs, categoryIDs map[string]uuid.UUID) (*models.Coupon, error) {
	validFrom, err := ParseCouponWindow(cfg.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("coupon %s: invalid valid_from: %w", cfg.Code, err)
	}
	validUntil, err := ParseCouponWindow(cfg.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("coupon %s: invalid valid_until: %w", cfg.Code, err)
	}

	coupon := &models.Coupon{
		Code:            strings.ToUpper(cfg.Code),
		Description:     cfg.Description,
		Type:            models.CouponType(cfg.Type),
		Value:           cfg.Value,
		MinPurchaseKobo: cfg.MinPurchaseKobo,
		MaxDiscountKobo: cfg.MaxDiscountKobo,
		MaxUses:         cfg.MaxUses,
		MaxUsesPerUser:  cfg.MaxUsesPerUser,
		ValidFrom:       validFrom,
		ValidUntil:      validUntil,
		IsActive:        cfg.Active,
		FirstOrderOnly:  cfg.FirstOrderOnly,
	}
	for _, sku := range cfg.ProductSKUs {
		coupon.ProductIDs = append(coupon.ProductIDs, productIDs[sku])
	}
	for _, slug := range cfg.CategorySlugs {
		coupon.CategoryIDs = append(coupon.CategoryIDs, categoryIDs[slug])
	}
	return coupon, nil
}
