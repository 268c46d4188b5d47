package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"crm-web/internal/domain"

	"github.com/go-playground/validator/v10"
)

// RegisterAccount completes onboarding: the validated registration payload
// is forwarded to the backend and the long-lived account cookie is rewritten
// with the stored result.
type RegisterAccount struct {
	accounts domain.AccountAPI
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRegisterAccount creates a new RegisterAccount usecase.
func NewRegisterAccount(accounts domain.AccountAPI, validate *validator.Validate, logger *slog.Logger) *RegisterAccount {
	return &RegisterAccount{accounts: accounts, validate: validate, logger: logger}
}

// Execute validates and registers the payload, then refreshes the account
// cookie. The provider account ids captured at login are preserved.
func (uc *RegisterAccount) Execute(ctx context.Context, store domain.SessionStore, accessToken string, payload *domain.Account) (*domain.Account, error) {
	if err := uc.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPayload, err)
	}

	registered, err := uc.accounts.Register(ctx, accessToken, payload)
	if err != nil {
		return nil, err
	}

	if current, err := store.Account(); err == nil {
		registered.HomeAccountID = current.HomeAccountID
		registered.LocalAccountID = current.LocalAccountID
	}
	store.SetAccount(registered)

	return registered, nil
}
