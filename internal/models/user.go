package models

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique). Used for login and
	// notification delivery.
	Email string `json:"email"`

	// DisplayName is shown to other team members.
	DisplayName string `json:"display_name"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64 `json:"updated_at"`
}
