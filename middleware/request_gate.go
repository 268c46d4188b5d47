package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"crm-web/internal/adapter/gateway"
	"crm-web/internal/domain"
	"crm-web/internal/infrastructure/cookie"
	"crm-web/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Route anchors the gate steers unauthenticated and unonboarded callers to.
const (
	loginPath      = "/login/b2c"
	loginPrefix    = "/login"
	logoutPath     = "/logout"
	onboardingPath = "/on-boarding"
	apiPrefix      = "/api"
	healthPath     = "/health"
)

// Gate runs before every page and API route: it resolves identity from
// cookies, decides allow-or-redirect and attaches identity, token, company
// and a bound backend client to the request context.
type Gate struct {
	tokens  *usecase.GetToken
	company *usecase.SelectCompany
	backend *gateway.BackendClient
	cookies cookie.Options
}

// NewGate creates the request gate.
func NewGate(tokens *usecase.GetToken, company *usecase.SelectCompany, backend *gateway.BackendClient, cookies cookie.Options) *Gate {
	return &Gate{tokens: tokens, company: company, backend: backend, cookies: cookies}
}

// Middleware returns the Echo middleware enforcing the gate.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isStaticAsset(path) || path == healthPath {
				return next(c)
			}

			store := cookie.NewStore(c, g.cookies)
			c.Set(sessionStoreKey, store)

			token, ok := g.tokens.Execute(c.Request().Context(), store)
			if !ok {
				// Logout stays reachable so a session whose token can no
				// longer refresh can still clear its cookies.
				if strings.HasPrefix(path, loginPrefix) || path == logoutPath {
					return next(c)
				}
				return c.Redirect(http.StatusFound, loginPath+"?redirect_url="+url.QueryEscape(path))
			}

			account, err := store.Account()
			if err != nil {
				// A token resolved but the account cookie is unreadable: drop
				// the session and continue unauthenticated rather than loop.
				store.ClearSessionToken()
				if errors.Is(err, domain.ErrCookieDecode) {
					store.ClearAccount()
				}
				return next(c)
			}

			companyID := g.company.Current(store, account)

			c.Set(tokenKey, token)
			c.Set(accountKey, account)
			c.Set(companyKey, companyID)
			c.Set(backendKey, g.backend.Session(token, companyID))

			// Onboarding gate. API paths stay reachable so client-side calls
			// made during onboarding aren't blocked.
			if !account.IsRegistered &&
				path != onboardingPath &&
				!strings.HasPrefix(path, apiPrefix) &&
				!strings.HasPrefix(path, loginPrefix) {
				return c.Redirect(http.StatusFound, onboardingPath)
			}

			return next(c)
		}
	}
}

// isStaticAsset reports whether the path looks like a build asset; any path
// containing a dot is treated as having a file extension.
func isStaticAsset(path string) bool {
	return strings.HasPrefix(path, "/_app/") ||
		strings.HasPrefix(path, "/favicon") ||
		strings.Contains(path, ".")
}
