package auth

import (
	"fmt"
	"strings"
	"time"
)

// Identity is the normalized result of a provider login. It holds facts
// only. Token fields are set only when TokenValid is true.
type Identity struct {
	Provider   string // e.g. "vatsim", "connect"
	ExternalID string // provider-assigned id, also the local username
	FirstName  string
	LastName   string
	Email      string

	TokenValid   bool
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
}

// FullName joins first and last name with a single space, as-is.
func (i *Identity) FullName() string {
	return i.FirstName + " " + i.LastName
}

// Validate reports ErrIncompleteProfile when a required field is missing
// or the provider did not mark the token as valid.
func (i *Identity) Validate() error {
	if i == nil {
		return fmt.Errorf("%w: no identity", ErrIncompleteProfile)
	}

	var missing []string
	if i.ExternalID == "" {
		missing = append(missing, "id")
	}
	if i.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if i.LastName == "" {
		missing = append(missing, "last_name")
	}
	if i.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteProfile, strings.Join(missing, ", "))
	}
	if !i.TokenValid {
		return fmt.Errorf("%w: token not valid", ErrIncompleteProfile)
	}
	return nil
}
