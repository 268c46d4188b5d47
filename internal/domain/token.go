package domain

import "time"

// TokenExpiryBuffer guards against the race between checking a cached
// token and using it against the backend.
const TokenExpiryBuffer = 5 * time.Minute

// CachedToken is the last-known backend access token and its absolute expiry.
// It is never mutated in place; a refreshed token replaces it wholesale.
type CachedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the token is still usable at now, keeping buffer
// between the check and the actual use. The comparison is strict: a token
// expiring exactly at now+buffer must be refreshed.
func (t CachedToken) Valid(now time.Time, buffer time.Duration) bool {
	return now.Add(buffer).Before(t.ExpiresAt)
}

// TokenResult is the outcome of a token acquisition against the identity
// provider, either interactive (code exchange) or silent (refresh grant).
type TokenResult struct {
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
	HomeAccountID  string
	LocalAccountID string
	Email          string
}
