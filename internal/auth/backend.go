package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
)

// Authentication failures surfaced to the login boundary
var (
	// ErrInvalidLogin means the credentials did not match any account
	ErrInvalidLogin = errors.New("invalid login")

	// ErrDisabledAccount means the credentials matched an inactive account
	ErrDisabledAccount = errors.New("disabled account")
)

// Authenticator verifies credentials. The identifier may be a username or
// an email address: username lookup runs first, then the email fallback.
type Authenticator struct {
	db *gorm.DB
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(gdb *gorm.DB) *Authenticator {
	return &Authenticator{db: gdb}
}

// Authenticate resolves the identifier and verifies the password. An email
// matching more than one account is treated as a failed login, not an
// internal error.
func (a *Authenticator) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	if identifier == "" || password == "" {
		return nil, ErrInvalidLogin
	}

	users := db.NewUserRepository(db.NewRepository(a.db))

	user, err := users.GetByUsername(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("username lookup failed: %w", err)
	}

	if user == nil {
		matches, err := users.FindByEmail(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("email lookup failed: %w", err)
		}
		if len(matches) != 1 {
			return nil, ErrInvalidLogin
		}
		user = matches[0]
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidLogin
	}
	if !user.IsActive {
		return nil, ErrDisabledAccount
	}
	return user, nil
}
