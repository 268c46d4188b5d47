package usecase

import (
	"context"
	"errors"
	"log/slog"

	"crm-web/internal/domain"
)

// CompleteLogin consumes one authorization-code callback: CSRF validation,
// code exchange, backend profile lookup and session cookie establishment.
// No cookie is set unless every step succeeds.
type CompleteLogin struct {
	oauth    domain.OAuthGateway
	accounts domain.AccountAPI
	logger   *slog.Logger
}

// NewCompleteLogin creates a new CompleteLogin usecase.
func NewCompleteLogin(oauth domain.OAuthGateway, accounts domain.AccountAPI, logger *slog.Logger) *CompleteLogin {
	return &CompleteLogin{oauth: oauth, accounts: accounts, logger: logger}
}

// Execute processes the callback's code and state and returns the post-login
// redirect target.
func (uc *CompleteLogin) Execute(ctx context.Context, store domain.SessionStore, code, requestState string) (string, error) {
	if requestState == "" {
		return "", domain.ErrMissingState
	}

	local, err := store.OAuthState()
	if err != nil {
		if errors.Is(err, domain.ErrCookieAbsent) {
			return "", domain.ErrMissingStateCookie
		}
		return "", err
	}

	remote, err := domain.DecodeOAuthState(requestState)
	if err != nil {
		return "", err
	}

	if remote.CSRFToken != local.CSRFToken {
		return "", domain.ErrCSRFMismatch
	}

	if code == "" {
		return "", domain.ErrMissingCode
	}

	challenge, err := store.PKCEChallenge()
	if err != nil {
		if errors.Is(err, domain.ErrCookieAbsent) {
			return "", domain.ErrMissingVerifier
		}
		return "", err
	}

	uc.logger.InfoContext(ctx, "attempting token acquisition with authorization code")
	result, err := uc.oauth.ExchangeCode(ctx, code, challenge.Verifier)
	if err != nil {
		return "", err
	}

	account, err := uc.accounts.CurrentAccount(ctx, result.AccessToken)
	if err != nil {
		return "", err
	}

	// Carry the provider account ids; silent refresh is keyed by them.
	account.HomeAccountID = result.HomeAccountID
	account.LocalAccountID = result.LocalAccountID

	store.SetSessionToken(result.AccessToken, result.ExpiresAt)
	store.SetAccount(account)
	store.PutCachedToken(result.AccessToken, result.ExpiresAt)
	store.ClearOAuthTransaction()

	if local.RedirectURL == "" {
		return "/", nil
	}
	return local.RedirectURL, nil
}
