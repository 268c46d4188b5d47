package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"crm-web/internal/domain"
)

// GetToken is the single source of truth for "does this request have a
// usable backend access token", encapsulating the cache-then-refresh policy.
type GetToken struct {
	oauth  domain.OAuthGateway
	buffer time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewGetToken creates a new GetToken usecase.
func NewGetToken(oauth domain.OAuthGateway, buffer time.Duration, logger *slog.Logger) *GetToken {
	if buffer <= 0 {
		buffer = domain.TokenExpiryBuffer
	}
	return &GetToken{oauth: oauth, buffer: buffer, now: time.Now, logger: logger}
}

// Execute resolves the caller's access token. ok=false means the request is
// unauthenticated; acquisition failures never escape as errors — they clear
// the cached-token cookie and degrade to "no token".
func (uc *GetToken) Execute(ctx context.Context, store domain.SessionStore) (string, bool) {
	account, err := store.Account()
	if err != nil {
		if errors.Is(err, domain.ErrCookieDecode) {
			uc.logger.WarnContext(ctx, "account cookie malformed, clearing", "error", err)
			store.ClearAccount()
			store.ClearCachedToken()
		}
		return "", false
	}

	// Fast path: a still-valid cached token needs no provider contact.
	cached, err := store.CachedToken()
	switch {
	case err == nil && cached.Valid(uc.now(), uc.buffer):
		return cached.Token, true
	case errors.Is(err, domain.ErrCookieDecode):
		store.ClearCachedToken()
	}

	if !account.CanRefreshSilently() {
		return "", false
	}

	handle, found := uc.oauth.ResolveAccount(account.HomeAccountID, account.LocalAccountID)
	if !found {
		return "", false
	}

	result, err := uc.oauth.AcquireTokenSilent(ctx, handle)
	if err != nil {
		uc.logger.WarnContext(ctx, "silent token acquisition failed", "error", err)
		store.ClearCachedToken()
		return "", false
	}

	if result == nil {
		// Degraded fallback: the credential store could not serve the resolved
		// handle. Rebuild a minimal descriptor from the account's stored
		// identifiers and try once more.
		rebuilt, ok := uc.oauth.ReconstructAccount(account)
		if !ok {
			return "", false
		}
		result, err = uc.oauth.AcquireTokenSilent(ctx, rebuilt)
		if err != nil {
			uc.logger.WarnContext(ctx, "reconstructed token acquisition failed", "error", err)
			store.ClearCachedToken()
			return "", false
		}
		if result == nil {
			return "", false
		}
	}

	store.PutCachedToken(result.AccessToken, result.ExpiresAt)
	return result.AccessToken, true
}
