package usecase

import (
	"log/slog"

	"crm-web/internal/domain"
)

// SelectCompany resolves and switches the active company for multi-company
// accounts. Resolution happens once per request at gate entry; the result is
// request-scoped.
type SelectCompany struct {
	logger *slog.Logger
}

// NewSelectCompany creates a new SelectCompany usecase.
func NewSelectCompany(logger *slog.Logger) *SelectCompany {
	return &SelectCompany{logger: logger}
}

// Current returns the active company, defaulting from the account and
// persisting the cookie with its rolling expiry when unset.
func (uc *SelectCompany) Current(store domain.SessionStore, account *domain.Account) string {
	if id, ok := store.Company(); ok {
		return id
	}

	id := ""
	if account != nil {
		id = account.DefaultCompanyID
	}
	// Accounts without a default company get no cookie; an empty id would
	// only persist the absence it already signals.
	if id != "" {
		store.SetCompany(id)
	}
	return id
}

// Switch sets the active company after checking it is available to the
// account. An account with no available companies cannot switch at all.
func (uc *SelectCompany) Switch(store domain.SessionStore, account *domain.Account, id string) error {
	if id == "" {
		return domain.ErrInvalidPayload
	}
	if account == nil || !account.HasCompany(id) {
		return domain.ErrCompanyNotAllowed
	}
	store.SetCompany(id)
	return nil
}
