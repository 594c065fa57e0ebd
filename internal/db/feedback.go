package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedbackStore struct {
	pool *pgxpool.Pool
}

func NewFeedbackStore(pool *pgxpool.Pool) *FeedbackStore {
	return &FeedbackStore{pool: pool}
}

func (s *FeedbackStore) Create(ctx context.Context, fb *Feedback) error {
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO feedback (id, type, message, email, status)
		VALUES ($1, $2, $3, $4, 'new')
		RETURNING status, created_at`,
		fb.ID, fb.Type, fb.Message, fb.Email,
	).Scan(&fb.Status, &fb.CreatedAt)
}

func (s *FeedbackStore) List(ctx context.Context, limit int) ([]*Feedback, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, message, email, status, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.Type, &fb.Message, &fb.Email, &fb.Status, &fb.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &fb)
	}
	return entries, rows.Err()
}

func (s *FeedbackStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	cmdTag, err := s.pool.Exec(ctx, `
		UPDATE feedback SET status = $2
		WHERE id = $1 AND $2 IN ('new', 'reviewed', 'resolved')`,
		id, status)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
