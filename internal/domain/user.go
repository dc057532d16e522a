package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a learner account. Authentication is intentionally minimal here:
// the study core only ever sees an authenticated learner ID, and ownership
// checks against it are the sole authorization concern of this module.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a user with a freshly generated ID. The password must
// already be hashed by the auth service.
func NewUser(email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks that the user has an email and a password hash.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyUserEmail
	}
	if u.HashedPassword == "" {
		return ErrEmptyUserPassword
	}
	return nil
}
