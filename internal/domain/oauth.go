package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PKCEChallenge is the proof-key pair generated for one authorization-code
// flow. The verifier never leaves the server except inside the httpOnly
// challenge cookie.
type PKCEChallenge struct {
	Method    string `json:"challengeMethod"`
	Verifier  string `json:"verifier"`
	Challenge string `json:"challenge"`
}

// OAuthState is the CSRF/state payload round-tripped through the identity
// provider. The copy stored in the oauth_state cookie must match the copy
// echoed back in the callback's state parameter exactly.
type OAuthState struct {
	CSRFToken   string `json:"csrfToken"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Encode serializes the state as base64 JSON, the form it travels in both
// the oauth_state cookie and the provider's state parameter.
func (s OAuthState) Encode() string {
	raw, _ := json.Marshal(s)
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeOAuthState parses a base64 JSON state payload.
func DecodeOAuthState(encoded string) (*OAuthState, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStateData, err)
	}
	var state OAuthState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStateData, err)
	}
	return &state, nil
}

// Encode serializes the challenge as base64 JSON for the oauth_challenge cookie.
func (p PKCEChallenge) Encode() string {
	raw, _ := json.Marshal(p)
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodePKCEChallenge parses a base64 JSON challenge payload.
func DecodePKCEChallenge(encoded string) (*PKCEChallenge, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCookieDecode, err)
	}
	var challenge PKCEChallenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCookieDecode, err)
	}
	return &challenge, nil
}

// ProviderAccount is a handle to a refresh credential held for an account
// between requests.
type ProviderAccount struct {
	HomeAccountID  string
	LocalAccountID string
	Email          string
	RefreshToken   string
}
