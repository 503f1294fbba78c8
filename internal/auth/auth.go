// Package auth provides account registration, credential verification and
// session token handling for the API layer.
package auth

import (
	"context"
	"errors"

	"github.com/pmehra/teamtab/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("authorization token required")
)

// Authenticator abstracts the credential scheme so the API layer does not
// care whether accounts are password-backed or something else.
type Authenticator interface {
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
