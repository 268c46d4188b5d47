package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crm-web/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Authorization endpoints relative to the authority URL (B2C layout).
const (
	authorizePath = "/oauth2/v2.0/authorize"
	tokenPath     = "/oauth2/v2.0/token"
)

// challengeMethod is the only PKCE transform this client emits.
const challengeMethod = "S256"

// OAuthConfig holds the provider registration for the gateway.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	Authority    string
	RedirectURI  string
	Scopes       []string
}

// OAuthGateway implements domain.OAuthGateway against a PKCE-capable
// authorization server, keeping refresh credentials in an explicit
// process-owned store rather than relying on SDK internals.
type OAuthGateway struct {
	oauth       oauth2.Config
	credentials domain.CredentialStore
	httpClient  *http.Client
}

// NewOAuthGateway creates a provider gateway with tuned HTTP transport.
func NewOAuthGateway(cfg OAuthConfig, credentials domain.CredentialStore, timeout time.Duration) *OAuthGateway {
	authority := strings.TrimRight(cfg.Authority, "/")

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &OAuthGateway{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authority + authorizePath,
				TokenURL:  authority + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		credentials: credentials,
		httpClient:  &http.Client{Timeout: timeout, Transport: transport},
	}
}

// GeneratePKCE creates a cryptographically random verifier/challenge pair.
func (g *OAuthGateway) GeneratePKCE() (domain.PKCEChallenge, error) {
	verifier := oauth2.GenerateVerifier()
	return domain.PKCEChallenge{
		Method:    challengeMethod,
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
	}, nil
}

// AuthCodeURL builds the provider authorization URL for the given state and
// challenge. Deterministic given its inputs.
func (g *OAuthGateway) AuthCodeURL(state string, challenge domain.PKCEChallenge) string {
	return g.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", challenge.Method),
	)
}

// ExchangeCode redeems a single-use authorization code against the token
// endpoint. A provider rejection maps to domain.ErrAuthExchange; the code is
// spent either way, so callers must not retry.
func (g *OAuthGateway) ExchangeCode(ctx context.Context, code, verifier string) (*domain.TokenResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	token, err := g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: provider returned status %d", domain.ErrAuthExchange, retrieveErr.Response.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}

	result := g.tokenResult(token)
	if result.AccessToken == "" {
		return nil, domain.ErrAuthExchange
	}

	if token.RefreshToken != "" {
		g.credentials.Store(domain.ProviderAccount{
			HomeAccountID:  result.HomeAccountID,
			LocalAccountID: result.LocalAccountID,
			Email:          result.Email,
			RefreshToken:   token.RefreshToken,
		})
	}

	return result, nil
}

// ResolveAccount finds a refresh-credential handle, preferring lookup by
// home account id and falling back to the local one.
func (g *OAuthGateway) ResolveAccount(homeAccountID, localAccountID string) (*domain.ProviderAccount, bool) {
	if handle, found := g.credentials.LookupByHomeID(homeAccountID); found {
		return handle, true
	}
	return g.credentials.LookupByLocalID(localAccountID)
}

// ReconstructAccount rebuilds a minimal credential handle from the account's
// stored identifiers when id lookup failed. Best-effort recovery, not a
// guaranteed path.
func (g *OAuthGateway) ReconstructAccount(account *domain.Account) (*domain.ProviderAccount, bool) {
	if account == nil {
		return nil, false
	}
	handle, found := g.credentials.LookupByEmail(account.EmailAddress)
	if !found {
		return nil, false
	}
	if handle.HomeAccountID == "" {
		handle.HomeAccountID = account.HomeAccountID
	}
	if handle.LocalAccountID == "" {
		handle.LocalAccountID = account.LocalAccountID
	}
	return handle, true
}

// AcquireTokenSilent redeems the handle's refresh credential for a fresh
// access token. A missing or no-longer-accepted credential returns (nil, nil):
// an expected miss, not an error.
func (g *OAuthGateway) AcquireTokenSilent(ctx context.Context, handle *domain.ProviderAccount) (*domain.TokenResult, error) {
	if handle == nil || handle.RefreshToken == "" {
		return nil, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	source := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: handle.RefreshToken})
	token, err := source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// invalid_grant means the refresh credential is expired or revoked.
			g.credentials.Remove(*handle)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}

	result := g.tokenResult(token)
	if result.AccessToken == "" {
		return nil, nil
	}
	if result.HomeAccountID == "" {
		result.HomeAccountID = handle.HomeAccountID
	}
	if result.LocalAccountID == "" {
		result.LocalAccountID = handle.LocalAccountID
	}
	if result.Email == "" {
		result.Email = handle.Email
	}

	// Rotate the stored credential when the provider issued a new one.
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = handle.RefreshToken
	}
	g.credentials.Store(domain.ProviderAccount{
		HomeAccountID:  result.HomeAccountID,
		LocalAccountID: result.LocalAccountID,
		Email:          result.Email,
		RefreshToken:   refreshToken,
	})

	return result, nil
}

// tokenResult converts a provider token into the domain shape, filling the
// expiry and the account identifiers from token claims where the response
// body left them out.
func (g *OAuthGateway) tokenResult(token *oauth2.Token) *domain.TokenResult {
	result := &domain.TokenResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	if result.ExpiresAt.IsZero() {
		if claims, err := parseClaims(token.AccessToken); err == nil {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				result.ExpiresAt = exp.Time
			}
		}
	}
	if result.ExpiresAt.IsZero() {
		result.ExpiresAt = time.Now().Add(time.Hour)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return result
	}
	claims, err := parseClaims(idToken)
	if err != nil {
		return result
	}

	oid, _ := claims["oid"].(string)
	sub, _ := claims["sub"].(string)
	tid, _ := claims["tid"].(string)

	result.LocalAccountID = oid
	if result.LocalAccountID == "" {
		result.LocalAccountID = sub
	}
	if result.LocalAccountID != "" && tid != "" {
		result.HomeAccountID = result.LocalAccountID + "." + tid
	} else {
		result.HomeAccountID = result.LocalAccountID
	}

	if email, ok := claims["email"].(string); ok {
		result.Email = email
	} else if upn, ok := claims["preferred_username"].(string); ok {
		result.Email = upn
	} else if emails, ok := claims["emails"].([]any); ok && len(emails) > 0 {
		result.Email, _ = emails[0].(string)
	}

	return result
}

// parseClaims extracts claims from a JWT without verifying the signature.
// The token came straight from the provider over TLS; claims are only used
// for expiry and account-id bookkeeping, never for authorization decisions.
func parseClaims(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
