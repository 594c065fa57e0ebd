package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryStore struct {
	pool *pgxpool.Pool
}

func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

func (s *CategoryStore) List(ctx context.Context) ([]*Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, description, parent_id, is_active, created_at
		FROM categories
		WHERE is_active = TRUE
		ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *CategoryStore) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, parent_id, is_active, created_at
		FROM categories WHERE slug = $1`, slug)
	return scanCategory(row)
}

func (s *CategoryStore) Upsert(ctx context.Context, c *Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, slug, description, parent_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			parent_id = EXCLUDED.parent_id, is_active = EXCLUDED.is_active
		RETURNING id, created_at`,
		c.ID, c.Name, c.Slug, c.Description, nilUUID(c.ParentID), c.IsActive,
	).Scan(&c.ID, &c.CreatedAt)
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	var parentID pgtype.UUID
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &parentID, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = parentID.Bytes
	}
	return &c, nil
}

type BrandStore struct {
	pool *pgxpool.Pool
}

func NewBrandStore(pool *pgxpool.Pool) *BrandStore {
	return &BrandStore{pool: pool}
}

func (s *BrandStore) List(ctx context.Context) ([]*Brand, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, description, country, is_active, created_at
		FROM brands
		WHERE is_active = TRUE
		ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []*Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.Country, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, &b)
	}
	return brands, rows.Err()
}

func (s *BrandStore) GetBySlug(ctx context.Context, slug string) (*Brand, error) {
	var b Brand
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, country, is_active, created_at
		FROM brands WHERE slug = $1`, slug).
		Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.Country, &b.IsActive, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BrandStore) Upsert(ctx context.Context, b *Brand) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO brands (id, name, slug, description, country, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			country = EXCLUDED.country, is_active = EXCLUDED.is_active
		RETURNING id, created_at`,
		b.ID, b.Name, b.Slug, b.Description, b.Country, b.IsActive,
	).Scan(&b.ID, &b.CreatedAt)
}
