package account

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("account not found")
	ErrDuplicate = errors.New("account already exists")
	ErrSlugTaken = errors.New("account slug already taken")
)

// Profile is the part of an account refreshed on every login.
type Profile struct {
	Name     string
	FullName string
	Email    string
}

// Tokens is the cached provider grant. A zero value clears it.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	Expires      time.Time
}

// Store is the user store the gateway writes to. Create must grant the
// account's RoleID in the same transaction, return ErrDuplicate when the
// id is already taken and ErrSlugTaken when only the slug is.
type Store interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	UpdateProfile(ctx context.Context, id string, p Profile) error
	UpdateTokens(ctx context.Context, id string, t Tokens) error
}
