package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ParentID    uuid.UUID `json:"parent_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Brand struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Country     string    `json:"country"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	SKU               string    `json:"sku"`
	Description       string    `json:"description"`
	CategoryID        uuid.UUID `json:"category_id"`
	BrandID           uuid.UUID `json:"brand_id"`
	PriceKobo         int64     `json:"price_kobo"`
	CompareAtKobo     int64     `json:"compare_at_kobo"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	Concentration     string    `json:"concentration"`
	SizeML            int       `json:"size_ml"`
	Gender            string    `json:"gender"`
	TopNotes          string    `json:"top_notes"`
	MiddleNotes       string    `json:"middle_notes"`
	BaseNotes         string    `json:"base_notes"`
	IsAvailable       bool      `json:"is_available"`
	IsFeatured        bool      `json:"is_featured"`
	IsBestseller      bool      `json:"is_bestseller"`
	AverageRating     float64   `json:"average_rating"`
	ReviewCount       int       `json:"review_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// InStock reports whether the requested quantity can be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return p != nil && p.IsAvailable && p.StockQuantity >= quantity
}

// LowStock reports whether stock has fallen to or below the threshold.
func (p *Product) LowStock() bool {
	return p != nil && p.StockQuantity <= p.LowStockThreshold
}

type ProductVariant struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	SizeML        int       `json:"size_ml"`
	Concentration string    `json:"concentration"`
	PriceKobo     int64     `json:"price_kobo"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
}

// InStock reports whether the variant can fulfil the requested quantity.
func (v *ProductVariant) InStock(quantity int) bool {
	return v != nil && v.IsActive && v.StockQuantity >= quantity
}

// UnitPrice returns the variant price when set, falling back to the product price.
func (v *ProductVariant) UnitPrice(product *Product) int64 {
	if v != nil && v.PriceKobo > 0 {
		return v.PriceKobo
	}
	if product != nil {
		return product.PriceKobo
	}
	return 0
}
