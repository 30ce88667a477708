package social

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
	"github.com/bookmarkd/bookmarkd/pkg/telemetry"
)

// Like-toggle actions accepted on the boundary
const (
	LikeActionLike   = "like"
	LikeActionUnlike = "unlike"
)

// Likes manages per-image like-sets and their derived counters
type Likes struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLikes creates a new likes service
func NewLikes(gdb *gorm.DB) *Likes {
	return &Likes{
		db:     gdb,
		logger: logging.WithComponent("likes"),
	}
}

// ToggleImageLike adds or removes a user from an image's like-set and
// refreshes the derived counter. Both directions are idempotent. The
// counter is recomputed from the join table inside the same transaction
// whenever the set changes, never adjusted incrementally.
func (l *Likes) ToggleImageLike(ctx context.Context, imageID, userID int64, action string) error {
	ctx, span := telemetry.StartSpan(ctx, "likes.toggle")
	defer span.End()

	if imageID == 0 || userID == 0 {
		return ErrInvalidRequest
	}
	if action != LikeActionLike && action != LikeActionUnlike {
		return ErrInvalidRequest
	}
	if err := requireUser(ctx, l.db, userID); err != nil {
		return err
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var image models.Image
		if err := tx.First(&image, imageID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load image %d: %w", imageID, err)
		}

		if action == LikeActionLike {
			row := &models.ImageLike{ImageID: imageID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
			target := &Target{Type: models.TargetTypeImage, ID: imageID}
			if _, err := appendAction(ctx, tx, userID, models.VerbLikes, target, DedupWindow); err != nil {
				return err
			}
		} else {
			if err := tx.Where("image_id = ? AND user_id = ?", imageID, userID).
				Delete(&models.ImageLike{}).Error; err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
		}

		return refreshLikeCount(ctx, tx, imageID)
	})
}

// refreshLikeCount is the post-mutation hook: it recounts the like-set and
// stores the cardinality on the image row.
func refreshLikeCount(ctx context.Context, tx *gorm.DB, imageID int64) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&models.ImageLike{}).
		Where("image_id = ?", imageID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count likes: %w", err)
	}
	if err := tx.WithContext(ctx).Model(&models.Image{}).
		Where("id = ?", imageID).
		UpdateColumn("total_likes", count).Error; err != nil {
		return fmt.Errorf("failed to store like count: %w", err)
	}
	return nil
}
