package domain

// Permission names a backend capability granted to an account.
type Permission struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Account represents the signed-in caller: the profile returned by the
// backend API enriched with the identity-provider account identifiers
// captured during the authorization-code exchange.
type Account struct {
	IdpID                 string       `json:"idpId" validate:"required"`
	HomeAccountID         string       `json:"homeAccountId,omitempty"`
	LocalAccountID        string       `json:"localAccountId,omitempty"`
	EmailAddress          string       `json:"emailAddress" validate:"required,email"`
	FirstName             string       `json:"firstName" validate:"required,max=125"`
	LastName              string       `json:"lastName" validate:"required,max=125"`
	IsRegistered          bool         `json:"isRegistered"`
	Permissions           []Permission `json:"permissions"`
	AvailableCompanies    []string     `json:"availableCompanies"`
	DefaultCompanyID      string       `json:"defaultCompanyId,omitempty"`
	DefaultOrganizationID string       `json:"defaultOrganizationId,omitempty"`
}

// CanRefreshSilently reports whether the account carries at least one
// provider account identifier. Without one, silent token acquisition is
// impossible and the caller must go through the interactive flow again.
func (a *Account) CanRefreshSilently() bool {
	return a.HomeAccountID != "" || a.LocalAccountID != ""
}

// HasCompany reports whether the given company id is available to the account.
func (a *Account) HasCompany(id string) bool {
	for _, c := range a.AvailableCompanies {
		if c == id {
			return true
		}
	}
	return false
}
