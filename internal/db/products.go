package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `
	id, name, slug, sku, description, category_id, brand_id,
	price_kobo, compare_at_kobo, stock_quantity, low_stock_threshold,
	concentration, size_ml, gender, top_notes, middle_notes, base_notes,
	is_available, is_featured, is_bestseller, average_rating, review_count,
	created_at, updated_at`

// ProductFilter narrows List results. Zero values are ignored.
type ProductFilter struct {
	CategoryID uuid.UUID
	BrandID    uuid.UUID
	Featured   bool
	Search     string
	Limit      int
	Offset     int

	// IncludeUnavailable lifts the storefront availability filter for admin views.
	IncludeUnavailable bool
}

func (s *ProductStore) List(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE TRUE`
	if !filter.IncludeUnavailable {
		query = `SELECT` + productColumns + ` FROM products WHERE is_available = TRUE`
	}
	args := []any{}

	if filter.CategoryID != uuid.Nil {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.BrandID != uuid.Nil {
		args = append(args, filter.BrandID)
		query += fmt.Sprintf(" AND brand_id = $%d", len(args))
	}
	if filter.Featured {
		query += " AND is_featured = TRUE"
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (s *ProductStore) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+productColumns+` FROM products WHERE slug = $1`, slug)
	return scanProduct(row)
}

func (s *ProductStore) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// Upsert inserts or updates a product by SKU. Used by the catalog loader.
func (s *ProductStore) Upsert(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (
			id, name, slug, sku, description, category_id, brand_id,
			price_kobo, compare_at_kobo, stock_quantity, low_stock_threshold,
			concentration, size_ml, gender, top_notes, middle_notes, base_notes,
			is_available, is_featured, is_bestseller
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name, slug = EXCLUDED.slug, description = EXCLUDED.description,
			category_id = EXCLUDED.category_id, brand_id = EXCLUDED.brand_id,
			price_kobo = EXCLUDED.price_kobo, compare_at_kobo = EXCLUDED.compare_at_kobo,
			stock_quantity = EXCLUDED.stock_quantity, low_stock_threshold = EXCLUDED.low_stock_threshold,
			concentration = EXCLUDED.concentration, size_ml = EXCLUDED.size_ml, gender = EXCLUDED.gender,
			top_notes = EXCLUDED.top_notes, middle_notes = EXCLUDED.middle_notes, base_notes = EXCLUDED.base_notes,
			is_available = EXCLUDED.is_available, is_featured = EXCLUDED.is_featured,
			is_bestseller = EXCLUDED.is_bestseller, updated_at = NOW()
		RETURNING id, created_at`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Slug, p.SKU, p.Description, nilUUID(p.CategoryID), nilUUID(p.BrandID),
		p.PriceKobo, p.CompareAtKobo, p.StockQuantity, p.LowStockThreshold,
		p.Concentration, p.SizeML, p.Gender, p.TopNotes, p.MiddleNotes, p.BaseNotes,
		p.IsAvailable, p.IsFeatured, p.IsBestseller,
	).Scan(&p.ID, &p.CreatedAt)
}

func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock atomically reserves stock inside the checkout transaction.
// The conditional guard makes oversells impossible under concurrency.
func (s *ProductStore) DecrementStock(ctx context.Context, q Querier, productID uuid.UUID, quantity int) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1`,
		quantity, productID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", ErrInsufficientStock, productID)
	}
	return nil
}

// RestoreStock returns quantity to stock, used when an order is cancelled.
func (s *ProductStore) RestoreStock(ctx context.Context, q Querier, productID uuid.UUID, quantity int) error {
	_, err := q.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2`,
		quantity, productID)
	return err
}

// DecrementVariantStock reserves variant stock with the same conditional
// guard as DecrementStock.
func (s *ProductStore) DecrementVariantStock(ctx context.Context, q Querier, variantID uuid.UUID, quantity int) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $1
		WHERE id = $2 AND stock_quantity >= $1`,
		quantity, variantID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: variant %s", ErrInsufficientStock, variantID)
	}
	return nil
}

// RestoreVariantStock returns variant stock when an order is cancelled.
func (s *ProductStore) RestoreVariantStock(ctx context.Context, q Querier, variantID uuid.UUID, quantity int) error {
	_, err := q.Exec(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity + $1
		WHERE id = $2`,
		quantity, variantID)
	return err
}

// UpdateRating recomputes the approved-review aggregate for a product.
func (s *ProductStore) UpdateRating(ctx context.Context, q Querier, productID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		UPDATE products SET
			average_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = $1 AND is_approved = TRUE), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1 AND is_approved = TRUE),
			updated_at = NOW()
		WHERE id = $1`,
		productID)
	return err
}

func (s *ProductStore) LowStock(ctx context.Context, limit int) ([]*Product, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE is_available = TRUE AND stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (s *ProductStore) GetVariant(ctx context.Context, variantID uuid.UUID) (*ProductVariant, error) {
	var v ProductVariant
	err := s.pool.QueryRow(ctx, `
		SELECT id, product_id, sku, size_ml, concentration, price_kobo, stock_quantity, is_active
		FROM product_variants WHERE id = $1`, variantID).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.SizeML, &v.Concentration, &v.PriceKobo, &v.StockQuantity, &v.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *ProductStore) VariantsByProduct(ctx context.Context, productID uuid.UUID) ([]*ProductVariant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, sku, size_ml, concentration, price_kobo, stock_quantity, is_active
		FROM product_variants
		WHERE product_id = $1 AND is_active = TRUE
		ORDER BY size_ml ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []*ProductVariant
	for rows.Next() {
		var v ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.SizeML, &v.Concentration, &v.PriceKobo, &v.StockQuantity, &v.IsActive); err != nil {
			return nil, err
		}
		variants = append(variants, &v)
	}
	return variants, rows.Err()
}

func (s *ProductStore) UpsertVariant(ctx context.Context, v *ProductVariant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO product_variants (id, product_id, sku, size_ml, concentration, price_kobo, stock_quantity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, size_ml, concentration) DO UPDATE SET
			sku = EXCLUDED.sku, price_kobo = EXCLUDED.price_kobo,
			stock_quantity = EXCLUDED.stock_quantity, is_active = EXCLUDED.is_active`,
		v.ID, v.ProductID, v.SKU, v.SizeML, v.Concentration, v.PriceKobo, v.StockQuantity, v.IsActive)
	return err
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var categoryID, brandID pgtype.UUID
	var updatedAt pgtype.Timestamptz
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &categoryID, &brandID,
		&p.PriceKobo, &p.CompareAtKobo, &p.StockQuantity, &p.LowStockThreshold,
		&p.Concentration, &p.SizeML, &p.Gender, &p.TopNotes, &p.MiddleNotes, &p.BaseNotes,
		&p.IsAvailable, &p.IsFeatured, &p.IsBestseller, &p.AverageRating, &p.ReviewCount,
		&p.CreatedAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = categoryID.Bytes
	}
	if brandID.Valid {
		p.BrandID = brandID.Bytes
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func nilUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
