package middleware

import (
	"crm-web/internal/adapter/gateway"
	"crm-web/internal/domain"

	"github.com/labstack/echo/v4"
)

// Context keys for request-scoped session state set by the gate.
const (
	sessionStoreKey = "session.store"
	accountKey      = "session.account"
	tokenKey        = "session.token"
	companyKey      = "session.company"
	backendKey      = "session.backend"
)

// StoreFrom returns the request's cookie-backed session store.
func StoreFrom(c echo.Context) domain.SessionStore {
	store, _ := c.Get(sessionStoreKey).(domain.SessionStore)
	return store
}

// AccountFrom returns the authenticated account, or nil when the request is
// unauthenticated.
func AccountFrom(c echo.Context) *domain.Account {
	account, _ := c.Get(accountKey).(*domain.Account)
	return account
}

// TokenFrom returns the resolved access token for the request.
func TokenFrom(c echo.Context) (string, bool) {
	token, ok := c.Get(tokenKey).(string)
	return token, ok && token != ""
}

// CompanyFrom returns the active company id, which may be empty.
func CompanyFrom(c echo.Context) string {
	company, _ := c.Get(companyKey).(string)
	return company
}

// BackendFrom returns the request-scoped backend client with the bearer
// token and tenant header already bound.
func BackendFrom(c echo.Context) *gateway.SessionClient {
	client, _ := c.Get(backendKey).(*gateway.SessionClient)
	return client
}
