package handler

import (
	"golang.org/x/oauth2"
)

const verifierKey = "authentication.connect.verifier"

// challengeOptions returns the S256 challenge for a fresh verifier.
func challengeOptions() (verifier string, opts []oauth2.AuthCodeOption) {
	verifier = oauth2.GenerateVerifier()
	return verifier, []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
}

func verifierOptions(verifier string) []oauth2.AuthCodeOption {
	if verifier == "" {
		return nil
	}
	return []oauth2.AuthCodeOption{oauth2.VerifierOption(verifier)}
}
