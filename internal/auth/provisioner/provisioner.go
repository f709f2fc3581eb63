package provisioner

import (
	"context"

	"connect-gateway/internal/auth"
	"connect-gateway/internal/auth/account"
)

// Provisioner turns a validated provider identity into a local account.
// It is the only place where identity-to-account logic lives.
type Provisioner interface {
	Provision(ctx context.Context, identity *auth.Identity) (*account.Account, error)
}
