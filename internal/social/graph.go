package social

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
	"github.com/bookmarkd/bookmarkd/pkg/telemetry"
)

// Graph manages the directed follow relation between users. Edges live in
// their own table keyed by user ids; the user records themselves are never
// touched.
type Graph struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGraph creates a new social graph service
func NewGraph(gdb *gorm.DB) *Graph {
	return &Graph{
		db:     gdb,
		logger: logging.WithComponent("social-graph"),
	}
}

// Follow creates the actor→target edge if absent and logs an "is following"
// action. Calling it twice leaves one edge; the unique index plus
// ON CONFLICT DO NOTHING make the insert race-safe. Nothing stops an actor
// from following themselves.
func (g *Graph) Follow(ctx context.Context, actorID, targetID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "graph.follow")
	defer span.End()

	if actorID == 0 || targetID == 0 {
		return ErrInvalidRequest
	}
	if err := requireUser(ctx, g.db, actorID); err != nil {
		return err
	}
	if err := requireUser(ctx, g.db, targetID); err != nil {
		return err
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contact := &models.Contact{
			FromUserID: actorID,
			ToUserID:   targetID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(contact).Error; err != nil {
			return fmt.Errorf("failed to create contact edge: %w", err)
		}

		target := &Target{Type: models.TargetTypeUser, ID: targetID}
		if _, err := appendAction(ctx, tx, actorID, models.VerbIsFollowing, target, DedupWindow); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.logger.Debug("follow",
		zap.Int64("actor", actorID),
		zap.Int64("target", targetID))
	return nil
}

// Unfollow deletes the actor→target edge. Removing an absent edge is a
// no-op, and no action is logged either way.
func (g *Graph) Unfollow(ctx context.Context, actorID, targetID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "graph.unfollow")
	defer span.End()

	if actorID == 0 || targetID == 0 {
		return ErrInvalidRequest
	}
	if err := requireUser(ctx, g.db, actorID); err != nil {
		return err
	}
	if err := requireUser(ctx, g.db, targetID); err != nil {
		return err
	}

	if err := g.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", actorID, targetID).
		Delete(&models.Contact{}).Error; err != nil {
		return fmt.Errorf("failed to delete contact edge: %w", err)
	}

	g.logger.Debug("unfollow",
		zap.Int64("actor", actorID),
		zap.Int64("target", targetID))
	return nil
}

// Following lists the users userID follows, newest edge first
func (g *Graph) Following(ctx context.Context, userID int64, limit int) ([]*models.User, error) {
	if userID == 0 {
		return nil, ErrInvalidRequest
	}
	repo := db.NewContactRepository(db.NewRepository(g.db))
	return repo.Following(ctx, userID, clampLimit(limit))
}

// Followers lists the users following userID, newest edge first
func (g *Graph) Followers(ctx context.Context, userID int64, limit int) ([]*models.User, error) {
	if userID == 0 {
		return nil, ErrInvalidRequest
	}
	repo := db.NewContactRepository(db.NewRepository(g.db))
	return repo.Followers(ctx, userID, clampLimit(limit))
}

// IsFollowing reports whether the actor→target edge exists
func (g *Graph) IsFollowing(ctx context.Context, actorID, targetID int64) (bool, error) {
	repo := db.NewContactRepository(db.NewRepository(g.db))
	return repo.Exists(ctx, actorID, targetID)
}

// Counts returns (followers, following) for a user
func (g *Graph) Counts(ctx context.Context, userID int64) (int64, int64, error) {
	repo := db.NewContactRepository(db.NewRepository(g.db))
	return repo.Counts(ctx, userID)
}
