package handler

import (
	"net/http"

	"crm-web/internal/usecase"
	appmiddleware "crm-web/middleware"

	"github.com/labstack/echo/v4"
)

// LoginHandler drives the authorization-code flow: begin, callback, logout.
type LoginHandler struct {
	begin    *usecase.BeginLogin
	complete *usecase.CompleteLogin
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(begin *usecase.BeginLogin, complete *usecase.CompleteLogin) *LoginHandler {
	return &LoginHandler{begin: begin, complete: complete}
}

// HandleBegin processes GET /login/:provider. It writes the flow cookies and
// redirects the browser to the provider's authorization URL, carrying the
// caller's intended redirect_url through the state.
func (h *LoginHandler) HandleBegin(c echo.Context) error {
	store := appmiddleware.StoreFrom(c)

	authURL, err := h.begin.Execute(store, c.QueryParam("redirect_url"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.Redirect(http.StatusFound, authURL)
}

// HandleCallback processes GET /login/:provider/callback. Failures are
// rendered as explicit statuses; only a fully established session redirects.
func (h *LoginHandler) HandleCallback(c echo.Context) error {
	store := appmiddleware.StoreFrom(c)

	redirectURL, err := h.complete.Execute(
		c.Request().Context(),
		store,
		c.QueryParam("code"),
		c.QueryParam("state"),
	)
	if err != nil {
		return mapDomainError(err)
	}

	return c.Redirect(http.StatusFound, redirectURL)
}

// HandleLogout clears every session cookie and sends the caller back to the
// login page.
func (h *LoginHandler) HandleLogout(c echo.Context) error {
	store := appmiddleware.StoreFrom(c)

	store.ClearAccount()
	store.ClearSessionToken()
	store.ClearCachedToken()
	store.ClearCompany()

	return c.Redirect(http.StatusFound, "/login/b2c")
}
