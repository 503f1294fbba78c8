package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/pmehra/teamtab/internal/models"
	"github.com/pmehra/teamtab/internal/storage"
)

const minPasswordLen = 8

// UserStore is the slice of storage the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordAuthenticator verifies bcrypt-hashed passwords against stored users.
type PasswordAuthenticator struct {
	users UserStore
}

func NewPasswordAuthenticator(users UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// Register hashes the password and creates the account. Duplicate emails are
// reported by the store's uniqueness constraint, so there is no check-then-act
// race here.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, password string) (*models.User, error) {
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the email and password pair. Lookup failures and hash
// mismatches collapse into the same error so callers cannot probe for
// registered emails.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
