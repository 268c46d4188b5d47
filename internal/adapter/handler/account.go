package handler

import (
	"net/http"

	"crm-web/internal/domain"
	"crm-web/internal/usecase"
	appmiddleware "crm-web/middleware"

	"github.com/labstack/echo/v4"
)

// AccountHandler exposes the request identity and the onboarding
// registration endpoint.
type AccountHandler struct {
	register *usecase.RegisterAccount
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(register *usecase.RegisterAccount) *AccountHandler {
	return &AccountHandler{register: register}
}

// meResponse is the client bootstrap payload.
type meResponse struct {
	Account   *domain.Account `json:"account"`
	CompanyID string          `json:"companyId,omitempty"`
}

// HandleMe processes GET /api/session/me.
func (h *AccountHandler) HandleMe(c echo.Context) error {
	account := appmiddleware.AccountFrom(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	return c.JSON(http.StatusOK, meResponse{
		Account:   account,
		CompanyID: appmiddleware.CompanyFrom(c),
	})
}

// HandleRegister processes POST /api/account/register.
func (h *AccountHandler) HandleRegister(c echo.Context) error {
	token, ok := appmiddleware.TokenFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	store := appmiddleware.StoreFrom(c)

	var payload domain.Account
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	registered, err := h.register.Execute(c.Request().Context(), store, token, &payload)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, registered)
}
