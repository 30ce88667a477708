package images

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/internal/social"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
	"github.com/bookmarkd/bookmarkd/pkg/slug"
	"github.com/bookmarkd/bookmarkd/pkg/telemetry"
)

// Service implements image bookmarking
type Service struct {
	db       *gorm.DB
	fetcher  *Fetcher
	activity *social.Activity
	logger   *zap.Logger
}

// NewService creates a new image service
func NewService(gdb *gorm.DB, fetcher *Fetcher, activity *social.Activity) *Service {
	return &Service{
		db:       gdb,
		fetcher:  fetcher,
		activity: activity,
		logger:   logging.WithComponent("images"),
	}
}

// CreateInput is the bookmark creation payload
type CreateInput struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Create downloads the remote image and stores the bookmark, logging a
// "bookmarked image" action in the same transaction as the insert.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*models.Image, error) {
	ctx, span := telemetry.StartSpan(ctx, "images.create")
	defer span.End()

	if in.Title == "" || in.URL == "" {
		return nil, fmt.Errorf("%w: title and url are required", social.ErrValidation)
	}

	stored, err := s.fetcher.Fetch(ctx, in.URL, in.Title)
	if err != nil {
		return nil, err
	}

	image := &models.Image{
		UserID:      userID,
		Title:       in.Title,
		Slug:        slug.Make(in.Title),
		URL:         in.URL,
		Image:       stored,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return fmt.Errorf("failed to create image: %w", err)
		}
		target := &social.Target{Type: models.TargetTypeImage, ID: image.ID}
		if _, err := s.activity.RecordUniqueTx(ctx, tx, userID, models.VerbBookmarked, target); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bookmarked image",
		zap.Int64("user", userID),
		zap.Int64("image", image.ID))
	return image, nil
}
