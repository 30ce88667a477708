package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves users matching an email address. The email column is
// not unique, so callers decide what more than one match means.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(2).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListActive retrieves active users ordered by username
func (r *UserRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("username ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ProfileRepository provides profile-related database operations
type ProfileRepository struct {
	*Repository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(repo *Repository) *ProfileRepository {
	return &ProfileRepository{Repository: repo}
}

// GetByUserID retrieves a profile by user ID
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetOrCreate returns the user's profile, creating an empty one if missing
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}
	profile = &models.Profile{UserID: userID}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// Update updates a profile
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// ContactRepository provides follow-edge database operations
type ContactRepository struct {
	*Repository
}

// NewContactRepository creates a new contact repository
func NewContactRepository(repo *Repository) *ContactRepository {
	return &ContactRepository{Repository: repo}
}

// Exists reports whether the edge from→to is present
func (r *ContactRepository) Exists(ctx context.Context, fromID, toID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Following retrieves the users that userID follows, newest edge first
func (r *ContactRepository) Following(ctx context.Context, userID int64, limit int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN bkm_contacts ON bkm_contacts.to_user_id = bkm_users.id").
		Where("bkm_contacts.from_user_id = ?", userID).
		Order("bkm_contacts.created_at DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Followers retrieves the users that follow userID, newest edge first
func (r *ContactRepository) Followers(ctx context.Context, userID int64, limit int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN bkm_contacts ON bkm_contacts.from_user_id = bkm_users.id").
		Where("bkm_contacts.to_user_id = ?", userID).
		Order("bkm_contacts.created_at DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FollowingIDs retrieves the ids of users that userID follows
func (r *ContactRepository) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("from_user_id = ?", userID).
		Pluck("to_user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Counts returns (followers, following) for a user
func (r *ContactRepository) Counts(ctx context.Context, userID int64) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("to_user_id = ?", userID).
		Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("from_user_id = ?", userID).
		Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// ActionRepository provides activity-log database operations
type ActionRepository struct {
	*Repository
}

// NewActionRepository creates a new action repository
func NewActionRepository(repo *Repository) *ActionRepository {
	return &ActionRepository{Repository: repo}
}

// List retrieves actions newest first, id descending as the tiebreak
func (r *ActionRepository) List(ctx context.Context, limit, offset int) ([]*models.Action, error) {
	var actions []*models.Action
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// ListByActors retrieves actions by the given actors, newest first
func (r *ActionRepository) ListByActors(ctx context.Context, actorIDs []int64, limit, offset int) ([]*models.Action, error) {
	if len(actorIDs) == 0 {
		return []*models.Action{}, nil
	}
	var actions []*models.Action
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", actorIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// CountByUserAndVerb counts actions by a single actor with a given verb
func (r *ActionRepository) CountByUserAndVerb(ctx context.Context, userID int64, verb string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Action{}).
		Where("user_id = ? AND verb = ?", userID, verb).
		Count(&count).Error
	return count, err
}
