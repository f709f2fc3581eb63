package vatsim

import (
	"context"

	"connect-gateway/internal/auth"
	"connect-gateway/internal/auth/provider"

	"golang.org/x/oauth2"
)

const providerName = "vatsim"

// Provider implements VATSIM Connect. The profile is nested under data,
// and data.oauth.token_valid says whether the user granted lasting access.
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

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

type profile struct {
	Data struct {
		CID      provider.FlexString `json:"cid"`
		Personal struct {
			NameFirst string `json:"name_first"`
			NameLast  string `json:"name_last"`
			Email     string `json:"email"`
		} `json:"personal"`
		OAuth struct {
			TokenValid provider.FlexBool `json:"token_valid"`
		} `json:"oauth"`
	} `json:"data"`
}

// MapProfile maps a VATSIM Connect user document. Type mismatches in
// single fields leave those fields empty.
func (p *Provider) MapProfile(doc provider.Document, token *oauth2.Token) *auth.Identity {
	var prof profile
	_ = doc.Decode(&prof)

	id := &auth.Identity{
		Provider:   providerName,
		ExternalID: string(prof.Data.CID),
		FirstName:  prof.Data.Personal.NameFirst,
		LastName:   prof.Data.Personal.NameLast,
		Email:      prof.Data.Personal.Email,
		TokenValid: bool(prof.Data.OAuth.TokenValid),
	}
	provider.AttachToken(id, token)
	return id
}
