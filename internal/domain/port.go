package domain

import (
	"context"
	"time"
)

// SessionStore is the per-request persisted state backed by httpOnly cookies.
// Reads must observe writes and deletes made earlier in the same request,
// before the response ever reaches the client.
type SessionStore interface {
	Account() (*Account, error)
	SetAccount(account *Account)
	ClearAccount()

	CachedToken() (*CachedToken, error)
	PutCachedToken(token string, expiresAt time.Time)
	ClearCachedToken()

	SetSessionToken(token string, expiresAt time.Time)
	ClearSessionToken()

	Company() (string, bool)
	SetCompany(id string)
	ClearCompany()

	OAuthState() (*OAuthState, error)
	SetOAuthState(state OAuthState)
	PKCEChallenge() (*PKCEChallenge, error)
	SetPKCEChallenge(challenge PKCEChallenge)
	ClearOAuthTransaction()
}

// OAuthGateway wraps the identity-provider operations the session core needs.
type OAuthGateway interface {
	GeneratePKCE() (PKCEChallenge, error)
	AuthCodeURL(state string, challenge PKCEChallenge) string
	// ExchangeCode redeems a single-use authorization code. It must never be
	// retried with the same code.
	ExchangeCode(ctx context.Context, code, verifier string) (*TokenResult, error)
	// ResolveAccount finds a refresh-credential handle, preferring the home
	// account id over the local one.
	ResolveAccount(homeAccountID, localAccountID string) (*ProviderAccount, bool)
	// ReconstructAccount is the degraded recovery path: it rebuilds a handle
	// from the account's stored email when id lookup came up empty-handed.
	ReconstructAccount(account *Account) (*ProviderAccount, bool)
	// AcquireTokenSilent redeems the handle's refresh credential. A (nil, nil)
	// return means the credential is missing or no longer accepted; this is an
	// expected outcome, not an error.
	AcquireTokenSilent(ctx context.Context, handle *ProviderAccount) (*TokenResult, error)
}

// CredentialStore holds provider refresh credentials between requests.
type CredentialStore interface {
	LookupByHomeID(homeAccountID string) (*ProviderAccount, bool)
	LookupByLocalID(localAccountID string) (*ProviderAccount, bool)
	LookupByEmail(email string) (*ProviderAccount, bool)
	Store(account ProviderAccount)
	Remove(account ProviderAccount)
}

// AccountAPI is the slice of the backend REST API the session core consumes.
type AccountAPI interface {
	CurrentAccount(ctx context.Context, accessToken string) (*Account, error)
	Register(ctx context.Context, accessToken string, account *Account) (*Account, error)
}
