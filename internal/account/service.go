package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/badoux/checkmail"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/auth"
	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/internal/social"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
	"github.com/bookmarkd/bookmarkd/pkg/telemetry"
)

// ErrUsernameTaken means the requested username already belongs to an account
var ErrUsernameTaken = errors.New("username already in use")

// Service implements registration and profile maintenance
type Service struct {
	db       *gorm.DB
	activity *social.Activity
	logger   *zap.Logger
}

// NewService creates a new account service
func NewService(gdb *gorm.DB, activity *social.Activity) *Service {
	return &Service{
		db:       gdb,
		activity: activity,
		logger:   logging.WithComponent("account"),
	}
}

// RegisterInput is the registration form payload
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// Validate returns field-level validation messages, empty when the input
// is acceptable
func (in *RegisterInput) Validate() map[string]string {
	errs := make(map[string]string)
	if in.Username == "" {
		errs["username"] = "Required username"
	}
	if in.Email == "" {
		errs["email"] = "Required email"
	} else if err := checkmail.ValidateFormat(in.Email); err != nil {
		errs["email"] = "Invalid email"
	}
	if in.Password == "" {
		errs["password"] = "Required password"
	} else if len(in.Password) < 6 {
		errs["password"] = "Password should be at least 6 characters"
	}
	if in.Password != in.Password2 {
		errs["password2"] = "Passwords don't match"
	}
	return errs
}

// Register creates the account, its profile, and the account-creation
// activity entry in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "account.register")
	defer span.End()

	if errs := in.Validate(); len(errs) > 0 {
		return nil, social.ErrValidation
	}

	users := db.NewUserRepository(db.NewRepository(s.db))
	existing, err := users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("username lookup failed: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		profile := &models.Profile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		action := &models.Action{
			UserID:    user.ID,
			Verb:      models.VerbCreatedAccount,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("failed to record account creation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("registered user", zap.String("username", user.Username))
	return user, nil
}

// EnsureProfile creates an empty profile for accounts that predate the
// profile table. Called after a successful login.
func (s *Service) EnsureProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	profiles := db.NewProfileRepository(db.NewRepository(s.db))
	return profiles.GetOrCreate(ctx, userID)
}

// ProfileInput is the profile edit payload
type ProfileInput struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Photo       string     `json:"photo"`
}

// UpdateProfile updates the user record and its profile
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) error {
	if in.Email != "" {
		if err := checkmail.ValidateFormat(in.Email); err != nil {
			return social.ErrValidation
		}
	}

	repo := db.NewRepository(s.db)
	users := db.NewUserRepository(repo)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return social.ErrNotFound
	}

	profiles := db.NewProfileRepository(repo)
	profile, err := profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.DateOfBirth != nil {
		profile.DateOfBirth = sql.NullTime{Time: *in.DateOfBirth, Valid: true}
	}
	if in.Photo != "" {
		profile.Photo = sql.NullString{String: in.Photo, Valid: true}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if err := tx.Save(profile).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	})
}
