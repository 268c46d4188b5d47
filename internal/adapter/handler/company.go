package handler

import (
	"net/http"

	"crm-web/internal/usecase"
	appmiddleware "crm-web/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CompanyHandler exposes the active-company selection for multi-company
// accounts.
type CompanyHandler struct {
	uc       *usecase.SelectCompany
	validate *validator.Validate
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(uc *usecase.SelectCompany, validate *validator.Validate) *CompanyHandler {
	return &CompanyHandler{uc: uc, validate: validate}
}

// switchCompanyRequest is the company-switch payload.
type switchCompanyRequest struct {
	CompanyID string `json:"companyId" validate:"required"`
}

// companyResponse wraps the active company id.
type companyResponse struct {
	CompanyID string `json:"companyId"`
}

// HandleCurrent processes GET /api/current/company.
func (h *CompanyHandler) HandleCurrent(c echo.Context) error {
	store := appmiddleware.StoreFrom(c)
	account := appmiddleware.AccountFrom(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	return c.JSON(http.StatusOK, companyResponse{CompanyID: h.uc.Current(store, account)})
}

// HandleSwitch processes POST /api/current/company.
func (h *CompanyHandler) HandleSwitch(c echo.Context) error {
	store := appmiddleware.StoreFrom(c)
	account := appmiddleware.AccountFrom(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req switchCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "companyId is required")
	}

	if err := h.uc.Switch(store, account, req.CompanyID); err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, companyResponse{CompanyID: req.CompanyID})
}
