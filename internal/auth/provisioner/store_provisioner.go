package provisioner

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"connect-gateway/internal/auth"
	"connect-gateway/internal/auth/account"

	"golang.org/x/oauth2"
)

const (
	maxSlugAttempts = 20
	fallbackSlug    = "user"
)

var (
	ErrNoRefreshToken = errors.New("account has no refresh token")
	ErrReauthenticate = errors.New("provider rejected refresh token, login required")
)

// Refresher rotates a provider token. A nil token with a nil error means
// the provider rejected the refresh token.
type Refresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// StoreProvisioner provisions accounts in an account.Store.
type StoreProvisioner struct {
	store         account.Store
	defaultRoleID int64
}

func NewStoreProvisioner(store account.Store, defaultRoleID int64) *StoreProvisioner {
	return &StoreProvisioner{store: store, defaultRoleID: defaultRoleID}
}

// Provision finds the account keyed by the identity's external id. A new
// account gets the default role and, when the token is valid, the provider
// tokens. An existing account only has its name, full name and email
// refreshed. The account is re-read after the write.
func (p *StoreProvisioner) Provision(ctx context.Context, identity *auth.Identity) (*account.Account, error) {
	if identity == nil {
		return nil, errors.New("identity is nil")
	}
	if identity.ExternalID == "" {
		return nil, fmt.Errorf("%w: missing id", auth.ErrIncompleteProfile)
	}

	// 1. Existing account: refresh profile only
	_, err := p.store.FindByID(ctx, identity.ExternalID)
	switch {
	case err == nil:
		if err := p.update(ctx, identity); err != nil {
			return nil, err
		}
	case errors.Is(err, account.ErrNotFound):
		// 2. First login: create, or fall back to update if a concurrent
		// login won the insert
		err = p.create(ctx, newAccount(identity, p.defaultRoleID))
		if errors.Is(err, account.ErrDuplicate) {
			err = p.update(ctx, identity)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return p.store.FindByID(ctx, identity.ExternalID)
}

// RefreshTokens rotates the cached provider token of an account. When the
// provider rejects the refresh token the cached tokens are cleared and
// ErrReauthenticate is returned.
func (p *StoreProvisioner) RefreshTokens(ctx context.Context, id string, r Refresher) (*account.Account, error) {
	acct, err := p.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	next, err := r.Refresh(ctx, &oauth2.Token{
		AccessToken:  acct.AccessToken,
		RefreshToken: acct.RefreshToken,
		Expiry:       acct.TokenExpires,
	})
	if err != nil {
		return nil, err
	}

	if next == nil {
		if err := p.store.UpdateTokens(ctx, id, account.Tokens{}); err != nil {
			return nil, err
		}
		return nil, ErrReauthenticate
	}

	refresh := next.RefreshToken
	if refresh == "" {
		refresh = acct.RefreshToken
	}
	err = p.store.UpdateTokens(ctx, id, account.Tokens{
		AccessToken:  next.AccessToken,
		RefreshToken: refresh,
		Expires:      next.Expiry,
	})
	if err != nil {
		return nil, err
	}
	return p.store.FindByID(ctx, id)
}

// create inserts the account, moving to the next free slug when another
// account already holds it.
func (p *StoreProvisioner) create(ctx context.Context, a *account.Account) error {
	base := a.Slug
	for n := 1; n <= maxSlugAttempts; n++ {
		a.Slug = slugCandidate(base, n)

		err := p.store.Create(ctx, a)
		if !errors.Is(err, account.ErrSlugTaken) {
			return err
		}
	}
	return fmt.Errorf("%w: no free slug for %q", account.ErrSlugTaken, base)
}

// slugCandidate returns base for the first attempt and base-n after it.
func slugCandidate(base string, n int) string {
	if n == 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

func (p *StoreProvisioner) update(ctx context.Context, identity *auth.Identity) error {
	return p.store.UpdateProfile(ctx, identity.ExternalID, account.Profile{
		Name:     identity.ExternalID,
		FullName: identity.FullName(),
		Email:    identity.Email,
	})
}

func newAccount(identity *auth.Identity, roleID int64) *account.Account {
	a := &account.Account{
		ID:       identity.ExternalID,
		Name:     identity.ExternalID,
		FullName: identity.FullName(),
		Email:    identity.Email,
		Slug:     slugFor(identity.ExternalID),
		RoleID:   roleID,
	}
	if identity.TokenValid {
		a.AccessToken = identity.AccessToken
		a.RefreshToken = identity.RefreshToken
		a.TokenExpires = identity.TokenExpiry
	}
	return a
}

// slugFor slugifies the external id. Ids without ASCII letters or digits
// fall back to a fixed stem.
func slugFor(externalID string) string {
	if slug := account.Slugify(externalID); slug != "" {
		return slug
	}
	return fallbackSlug
}
