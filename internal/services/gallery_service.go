package services

import (
	"context"
	"log"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/pkg/apperr"
)

// GalleryRepository is the gallery persistence surface.
type GalleryRepository interface {
	Create(ctx context.Context, item *models.GalleryItem) error
	ByUser(ctx context.Context, userID uuid.UUID, private bool) ([]models.GalleryItem, error)
	CountByUser(ctx context.Context, userID uuid.UUID, private bool) (int, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.GalleryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const maxGalleryItems = 10

// GalleryService manages a user's media gallery backed by object storage.
// Public and private sections are capped independently.
type GalleryService struct {
	repo    GalleryRepository
	storage ObjectStorage
}

func NewGalleryService(repo GalleryRepository, storage ObjectStorage) *GalleryService {
	return &GalleryService{repo: repo, storage: storage}
}

// Upload stores the file and records the gallery entry. On a persistence
// failure the uploaded object is cleaned up best-effort.
func (s *GalleryService) Upload(ctx context.Context, userID uuid.UUID, file multipart.File, private bool) (*models.GalleryItem, error) {
	n, err := s.repo.CountByUser(ctx, userID, private)
	if err != nil {
		return nil, apperr.Internal("failed to count gallery items", err)
	}
	if n >= maxGalleryItems {
		return nil, apperr.Validation(MsgGalleryLimitExceeded)
	}

	obj, err := s.storage.Upload(ctx, file, "galleries/"+userID.String())
	if err != nil {
		return nil, apperr.Upstream("Failed to upload media. Please try again.", err)
	}

	item := &models.GalleryItem{
		UserID:    userID,
		URL:       obj.URL,
		PublicID:  obj.PublicID,
		IsPrivate: private,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if delErr := s.storage.Delete(ctx, obj.PublicID); delErr != nil {
			log.Printf("failed to clean up orphaned upload %s: %v", obj.PublicID, delErr)
		}
		return nil, apperr.Internal("failed to save gallery item", err)
	}
	return item, nil
}

// List returns the gallery section. The private section is visible to its
// owner only.
func (s *GalleryService) List(ctx context.Context, viewerID, ownerID uuid.UUID, private bool) ([]models.GalleryItem, error) {
	if private && viewerID != ownerID {
		return nil, apperr.Forbidden("Private gallery is only visible to its owner")
	}
	items, err := s.repo.ByUser(ctx, ownerID, private)
	if err != nil {
		return nil, apperr.Internal("failed to list gallery items", err)
	}
	return items, nil
}

// Delete removes a gallery item and its stored object. Owner only.
func (s *GalleryService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.repo.ByID(ctx, itemID)
	if err != nil {
		return apperr.Internal("failed to look up gallery item", err)
	}
	if item == nil {
		return apperr.NotFound("Gallery item not found")
	}
	if item.UserID != userID {
		return apperr.Forbidden("Only the owner can delete gallery items")
	}

	if err := s.storage.Delete(ctx, item.PublicID); err != nil {
		log.Printf("failed to delete stored object %s: %v", item.PublicID, err)
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return apperr.Internal("failed to delete gallery item", err)
	}
	return nil
}
