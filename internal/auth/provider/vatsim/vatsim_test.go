package vatsim

import (
	"testing"
	"time"

	"connect-gateway/internal/auth/provider"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestMapProfile(t *testing.T) {
	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	token := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: expiry}

	tests := []struct {
		name       string
		doc        string
		wantID     string
		wantEmail  string
		tokenValid bool
	}{
		{
			name:       "token_valid as string",
			doc:        `{"data":{"cid":"999999","personal":{"name_first":"Jane","name_last":"Doe","email":"jane@example.com"},"oauth":{"token_valid":"true"}}}`,
			wantID:     "999999",
			wantEmail:  "jane@example.com",
			tokenValid: true,
		},
		{
			name:       "token_valid as bool and numeric cid",
			doc:        `{"data":{"cid":999999,"personal":{"name_first":"Jane","name_last":"Doe","email":"jane@example.com"},"oauth":{"token_valid":true}}}`,
			wantID:     "999999",
			wantEmail:  "jane@example.com",
			tokenValid: true,
		},
		{
			name:      "token not valid",
			doc:       `{"data":{"cid":"1","personal":{"name_first":"A","name_last":"B","email":"a@b.c"},"oauth":{"token_valid":"false"}}}`,
			wantID:    "1",
			wantEmail: "a@b.c",
		},
		{
			name:   "missing personal block",
			doc:    `{"data":{"cid":"1"}}`,
			wantID: "1",
		},
		{
			name: "data of the wrong type",
			doc:  `{"data":"nope"}`,
		},
		{
			name: "not json",
			doc:  `garbage`,
		},
	}

	p := &Provider{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := p.MapProfile(provider.Document(tt.doc), token)

			assert.Equal(t, "vatsim", id.Provider)
			assert.Equal(t, tt.wantID, id.ExternalID)
			assert.Equal(t, tt.wantEmail, id.Email)
			assert.Equal(t, tt.tokenValid, id.TokenValid)
			if tt.tokenValid {
				assert.Equal(t, "at", id.AccessToken)
				assert.Equal(t, "rt", id.RefreshToken)
				assert.Equal(t, expiry, id.TokenExpiry)
			} else {
				assert.Empty(t, id.AccessToken)
				assert.Empty(t, id.RefreshToken)
				assert.True(t, id.TokenExpiry.IsZero())
			}
		})
	}
}

func TestMapProfileNames(t *testing.T) {
	doc := provider.Document(`{"data":{"cid":"5","personal":{"name_first":"Jane","name_last":"Doe","email":"j@d.e"},"oauth":{"token_valid":"true"}}}`)
	id := (&Provider{}).MapProfile(doc, &oauth2.Token{})

	assert.Equal(t, "Jane", id.FirstName)
	assert.Equal(t, "Doe", id.LastName)
	assert.NoError(t, id.Validate())
}
