package connect

import (
	"context"

	"connect-gateway/internal/auth"
	"connect-gateway/internal/auth/provider"

	"golang.org/x/oauth2"
)

const providerName = "connect"

// Provider implements the generic corporate Connect schema, a flat user
// document. This provider does not report token validity, so every
// token it issues is treated as valid.
type Provider struct {
	*provider.Client
}

func New(_ context.Context, opts provider.Options) (provider.OAuthProvider, error) {
	client, err := provider.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &Provider{Client: client}, nil
}

func (p *Provider) Name() string {
	return providerName
}

type profile struct {
	ID        provider.FlexString `json:"id"`
	FirstName string              `json:"firstname"`
	LastName  string              `json:"lastname"`
	Email     string              `json:"email"`
}

func (p *Provider) MapProfile(doc provider.Document, token *oauth2.Token) *auth.Identity {
	var prof profile
	_ = doc.Decode(&prof)

	id := &auth.Identity{
		Provider:   providerName,
		ExternalID: string(prof.ID),
		FirstName:  prof.FirstName,
		LastName:   prof.LastName,
		Email:      prof.Email,
		TokenValid: true,
	}
	provider.AttachToken(id, token)
	return id
}
