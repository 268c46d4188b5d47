package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOAuthState_RoundTrip(t *testing.T) {
	state := OAuthState{CSRFToken: "csrf-123", RedirectURL: "/customers/42"}

	decoded, err := DecodeOAuthState(state.Encode())

	assert.NoError(t, err)
	assert.Equal(t, &state, decoded)
}

func TestDecodeOAuthState_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "not base64", encoded: "%%%"},
		{name: "base64 but not json", encoded: "bm90LWpzb24="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeOAuthState(tt.encoded)
			assert.Nil(t, decoded)
			assert.True(t, errors.Is(err, ErrInvalidStateData))
		})
	}
}

func TestPKCEChallenge_RoundTrip(t *testing.T) {
	challenge := PKCEChallenge{Method: "S256", Verifier: "verifier", Challenge: "challenge"}

	decoded, err := DecodePKCEChallenge(challenge.Encode())

	assert.NoError(t, err)
	assert.Equal(t, &challenge, decoded)
}

func TestDecodePKCEChallenge_Invalid(t *testing.T) {
	decoded, err := DecodePKCEChallenge("bm90LWpzb24=")
	assert.Nil(t, decoded)
	assert.True(t, errors.Is(err, ErrCookieDecode))
}
