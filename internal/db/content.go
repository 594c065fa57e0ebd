package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateSubscriber = errors.New("email already subscribed")

type ContentStore struct {
	pool *pgxpool.Pool
}

func NewContentStore(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

const contentColumns = `
	id, key, title, subtitle, body, image_url, link_url, link_text,
	display_order, is_active, updated_at`

func (s *ContentStore) ListActive(ctx context.Context) ([]*ContentBlock, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+contentColumns+`
		FROM site_content
		WHERE is_active = TRUE
		ORDER BY display_order, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContentBlocks(rows)
}

func (s *ContentStore) ListAll(ctx context.Context) ([]*ContentBlock, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+contentColumns+`
		FROM site_content
		ORDER BY display_order, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContentBlocks(rows)
}

func (s *ContentStore) GetByKey(ctx context.Context, key string) (*ContentBlock, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT`+contentColumns+` FROM site_content WHERE key = $1`, key)
	return scanContentBlock(row)
}

// Upsert inserts or replaces the block stored under its key.
func (s *ContentStore) Upsert(ctx context.Context, block *ContentBlock) error {
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO site_content (
			id, key, title, subtitle, body, image_url, link_url, link_text,
			display_order, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (key) DO UPDATE SET
			title = EXCLUDED.title, subtitle = EXCLUDED.subtitle,
			body = EXCLUDED.body, image_url = EXCLUDED.image_url,
			link_url = EXCLUDED.link_url, link_text = EXCLUDED.link_text,
			display_order = EXCLUDED.display_order, is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, updated_at`,
		block.ID, block.Key, block.Title, block.Subtitle, block.Body,
		block.ImageURL, block.LinkURL, block.LinkText,
		block.DisplayOrder, block.IsActive,
	).Scan(&block.ID, &block.UpdatedAt)
}

func (s *ContentStore) Delete(ctx context.Context, key string) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM site_content WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribe records a newsletter signup. A repeat signup is a duplicate.
func (s *ContentStore) Subscribe(ctx context.Context, email string) (*NewsletterSubscriber, error) {
	sub := &NewsletterSubscriber{ID: uuid.New(), Email: email}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO newsletter_subscribers (id, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, subscribed_at`,
		sub.ID, sub.Email,
	).Scan(&sub.ID, &sub.SubscribedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateSubscriber
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *ContentStore) Subscribers(ctx context.Context, limit int) ([]*NewsletterSubscriber, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, subscribed_at
		FROM newsletter_subscribers
		ORDER BY subscribed_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []*NewsletterSubscriber
	for rows.Next() {
		sub := &NewsletterSubscriber{}
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, sub)
	}
	return subscribers, rows.Err()
}

func scanContentBlocks(rows pgx.Rows) ([]*ContentBlock, error) {
	var blocks []*ContentBlock
	for rows.Next() {
		block, err := scanContentBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

func scanContentBlock(row pgx.Row) (*ContentBlock, error) {
	block := &ContentBlock{}
	err := row.Scan(
		&block.ID, &block.Key, &block.Title, &block.Subtitle, &block.Body,
		&block.ImageURL, &block.LinkURL, &block.LinkText,
		&block.DisplayOrder, &block.IsActive, &block.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return block, nil
}
