package catalog

// Package catalog provides catalog seed file parsing functionality.

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type CatalogFile struct {
	Categories []CategoryConfig `yaml:"categories"`
	Brands     []BrandConfig    `yaml:"brands"`
	Products   []ProductConfig  `yaml:"products"`
	Coupons    []CouponConfig   `yaml:"coupons"`
}

type CategoryConfig struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Parent      string `yaml:"parent"`
}

type BrandConfig struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Country     string `yaml:"country"`
}

type ProductConfig struct {
	SKU               string          `yaml:"sku"`
	Name              string          `yaml:"name"`
	Slug              string          `yaml:"slug"`
	Description       string          `yaml:"description"`
	Category          string          `yaml:"category"`
	Brand             string          `yaml:"brand"`
	PriceKobo         int64           `yaml:"price_kobo"`
	CompareAtKobo     int64           `yaml:"compare_at_kobo"`
	StockQuantity     int             `yaml:"stock_quantity"`
	LowStockThreshold int             `yaml:"low_stock_threshold"`
	Concentration     string          `yaml:"concentration"`
	SizeML            int             `yaml:"size_ml"`
	Gender            string          `yaml:"gender"`
	TopNotes          string          `yaml:"top_notes"`
	MiddleNotes       string          `yaml:"middle_notes"`
	BaseNotes         string          `yaml:"base_notes"`
	Available         bool            `yaml:"available"`
	Featured          bool            `yaml:"featured"`
	Bestseller        bool            `yaml:"bestseller"`
	Variants          []VariantConfig `yaml:"variants"`
}

type VariantConfig struct {
	SKU           string `yaml:"sku"`
	SizeML        int    `yaml:"size_ml"`
	Concentration string `yaml:"concentration"`
	PriceKobo     int64  `yaml:"price_kobo"`
	StockQuantity int    `yaml:"stock_quantity"`
}

type CouponConfig struct {
	Code            string   `yaml:"code"`
	Description     string   `yaml:"description"`
	Type            string   `yaml:"type"`
	Value           int64    `yaml:"value"`
	MinPurchaseKobo int64    `yaml:"min_purchase_kobo"`
	MaxDiscountKobo int64    `yaml:"max_discount_kobo"`
	MaxUses         int      `yaml:"max_uses"`
	MaxUsesPerUser  int      `yaml:"max_uses_per_user"`
	ValidFrom       string   `yaml:"valid_from"`
	ValidUntil      string   `yaml:"valid_until"`
	Active          bool     `yaml:"active"`
	FirstOrderOnly  bool     `yaml:"first_order_only"`
	ProductSKUs     []string `yaml:"product_skus"`
	CategorySlugs   []string `yaml:"category_slugs"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*CatalogFile, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &file, nil
}

func (p *Parser) ParseFromString(content string) (*CatalogFile, error) {
	return p.Parse([]byte(content))
}
