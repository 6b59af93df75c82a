package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/models"
)

type GalleryStore struct {
	db *sql.DB
}

func NewGalleryStore(db *sql.DB) *GalleryStore {
	return &GalleryStore{db: db}
}

func (s *GalleryStore) Create(ctx context.Context, item *models.GalleryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_galleries (id, created_at, user_id, url, public_id, is_private)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, item.CreatedAt, item.UserID, item.URL, item.PublicID, item.IsPrivate)
	return err
}

func (s *GalleryStore) ByUser(ctx context.Context, userID uuid.UUID, private bool) ([]models.GalleryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, user_id, url, public_id, is_private
		FROM user_galleries WHERE user_id = $1 AND is_private = $2
		ORDER BY created_at DESC
	`, userID, private)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GalleryItem
	for rows.Next() {
		var it models.GalleryItem
		if err := rows.Scan(&it.ID, &it.CreatedAt, &it.UserID, &it.URL, &it.PublicID, &it.IsPrivate); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *GalleryStore) CountByUser(ctx context.Context, userID uuid.UUID, private bool) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_galleries WHERE user_id = $1 AND is_private = $2`,
		userID, private).Scan(&n)
	return n, err
}

func (s *GalleryStore) ByID(ctx context.Context, id uuid.UUID) (*models.GalleryItem, error) {
	var it models.GalleryItem
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, user_id, url, public_id, is_private
		FROM user_galleries WHERE id = $1
	`, id).Scan(&it.ID, &it.CreatedAt, &it.UserID, &it.URL, &it.PublicID, &it.IsPrivate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *GalleryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_galleries WHERE id = $1`, id)
	return err
}
