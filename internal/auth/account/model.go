package account

import "time"

// Account is a local wiki user created from a provider identity.
// ID, Name and the external id are the same value.
type Account struct {
	ID       string
	Name     string // login handle
	FullName string
	Email    string
	Slug     string
	RoleID   int64

	AccessToken  string
	RefreshToken string
	TokenExpires time.Time // zero when no token is stored

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasToken reports whether a provider token is cached on the account.
func (a *Account) HasToken() bool {
	return a.AccessToken != "" || a.RefreshToken != ""
}
