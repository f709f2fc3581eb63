package handler

import (
	"crypto/subtle"
	"fmt"

	"connect-gateway/internal/auth"
	"connect-gateway/internal/utils"
)

const (
	stateKey   = "authentication.connect.state"
	stateBytes = 32
)

func generateState() (string, error) {
	return utils.RandomToken(stateBytes)
}

// verifyState compares the callback state with the pending one in constant
// time. An empty pending state never matches.
func verifyState(pending, received string) error {
	if pending == "" {
		return fmt.Errorf("%w: no pending state", auth.ErrStateMismatch)
	}
	if subtle.ConstantTimeCompare([]byte(pending), []byte(received)) != 1 {
		return auth.ErrStateMismatch
	}
	return nil
}
