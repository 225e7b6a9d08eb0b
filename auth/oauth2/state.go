package oauth2

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	xoauth2 "golang.org/x/oauth2"
)

// Authorize parameter names understood by the provider.
const (
	ParamCode         = "code"
	ParamState        = "state"
	ParamCodeVerifier = "code_verifier"
)

// GenerateState creates a random state string for CSRF protection.
// Returns a 32-byte hex-encoded string (64 characters).
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// PKCE holds a PKCE (Proof Key for Code Exchange) verifier and its S256 challenge.
// Pass CodeVerifier as the "code_verifier" param on both legs of Authorize:
// the redirect leg sends the challenge, the callback leg sends the verifier.
type PKCE struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}

// NewPKCE generates a new PKCE verifier/challenge pair.
func NewPKCE() *PKCE {
	verifier := xoauth2.GenerateVerifier()
	return &PKCE{
		CodeVerifier:        verifier,
		CodeChallenge:       xoauth2.S256ChallengeFromVerifier(verifier),
		CodeChallengeMethod: "S256",
	}
}
