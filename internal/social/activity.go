package social

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
	"github.com/bookmarkd/bookmarkd/pkg/telemetry"
)

// DedupWindow is how far back RecordUnique looks for an identical entry
// before skipping the append.
const DedupWindow = 60 * time.Second

// Target is an optional second entity an action refers to
type Target struct {
	Type string
	ID   int64
}

// Activity appends to and reads the activity log
type Activity struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewActivity creates a new activity service
func NewActivity(gdb *gorm.DB) *Activity {
	return &Activity{
		db:     gdb,
		logger: logging.WithComponent("activity"),
	}
}

// Record appends an entry unconditionally. Repeated identical actions
// produce repeated entries; the log is a log, not a state.
func (a *Activity) Record(ctx context.Context, actorID int64, verb string, target *Target) error {
	if actorID == 0 || verb == "" {
		return ErrInvalidRequest
	}
	if err := requireUser(ctx, a.db, actorID); err != nil {
		return err
	}
	_, err := appendAction(ctx, a.db, actorID, verb, target, 0)
	return err
}

// RecordUnique appends an entry unless an identical one by the same actor
// exists within DedupWindow. Returns whether an entry was written.
func (a *Activity) RecordUnique(ctx context.Context, actorID int64, verb string, target *Target) (bool, error) {
	if actorID == 0 || verb == "" {
		return false, ErrInvalidRequest
	}
	if err := requireUser(ctx, a.db, actorID); err != nil {
		return false, err
	}
	return appendAction(ctx, a.db, actorID, verb, target, DedupWindow)
}

// RecordUniqueTx is RecordUnique running inside a caller-owned transaction,
// for flows that log as part of their own mutation.
func (a *Activity) RecordUniqueTx(ctx context.Context, tx *gorm.DB, actorID int64, verb string, target *Target) (bool, error) {
	if actorID == 0 || verb == "" {
		return false, ErrInvalidRequest
	}
	return appendAction(ctx, tx, actorID, verb, target, DedupWindow)
}

// GlobalFeed returns all actions, newest first
func (a *Activity) GlobalFeed(ctx context.Context, limit, offset int) ([]*models.Action, error) {
	ctx, span := telemetry.StartSpan(ctx, "activity.global_feed")
	defer span.End()

	repo := db.NewActionRepository(db.NewRepository(a.db))
	return repo.List(ctx, clampLimit(limit), offset)
}

// FollowedFeed returns actions by the users that userID follows, newest
// first. The user's own actions are not included.
func (a *Activity) FollowedFeed(ctx context.Context, userID int64, limit, offset int) ([]*models.Action, error) {
	ctx, span := telemetry.StartSpan(ctx, "activity.followed_feed")
	defer span.End()

	if userID == 0 {
		return nil, ErrInvalidRequest
	}
	repo := db.NewRepository(a.db)
	ids, err := db.NewContactRepository(repo).FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve following set: %w", err)
	}
	// A self-follow edge must not surface the viewer's own actions
	actors := ids[:0]
	for _, id := range ids {
		if id != userID {
			actors = append(actors, id)
		}
	}
	return db.NewActionRepository(repo).ListByActors(ctx, actors, clampLimit(limit), offset)
}

// appendAction writes one action row. A non-zero window suppresses the
// write when an identical row by the same actor is newer than the window.
func appendAction(ctx context.Context, tx *gorm.DB, actorID int64, verb string, target *Target, window time.Duration) (bool, error) {
	if window > 0 {
		q := tx.WithContext(ctx).Model(&models.Action{}).
			Where("user_id = ? AND verb = ? AND created_at >= ?", actorID, verb, time.Now().UTC().Add(-window))
		if target != nil {
			q = q.Where("target_type = ? AND target_id = ?", target.Type, target.ID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return false, fmt.Errorf("failed to check for duplicate action: %w", err)
		}
		if count > 0 {
			return false, nil
		}
	}

	action := &models.Action{
		UserID:    actorID,
		Verb:      verb,
		CreatedAt: time.Now().UTC(),
	}
	if target != nil {
		action.TargetType = sql.NullString{String: target.Type, Valid: true}
		action.TargetID = sql.NullInt64{Int64: target.ID, Valid: true}
	}
	if err := tx.WithContext(ctx).Create(action).Error; err != nil {
		return false, fmt.Errorf("failed to append action: %w", err)
	}
	return true, nil
}

// requireUser resolves a user id into an existing, active account
func requireUser(ctx context.Context, tx *gorm.DB, userID int64) error {
	user, err := db.NewUserRepository(db.NewRepository(tx)).GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user %d: %w", userID, err)
	}
	if user == nil || !user.IsActive {
		return ErrNotFound
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
