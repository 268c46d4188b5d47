package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"crm-web/internal/domain"
	"crm-web/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountHandler(accounts domain.AccountAPI) *AccountHandler {
	return NewAccountHandler(usecase.NewRegisterAccount(
		accounts, validator.New(), slog.New(slog.DiscardHandler)))
}

func TestHandleMe(t *testing.T) {
	h := newAccountHandler(&stubAccounts{})
	account := &domain.Account{IdpID: "idp-1", EmailAddress: "user@example.com"}
	c, rec := newAPIContext(t, http.MethodGet, "/api/session/me", "", account)
	c.Set("session.company", "co-1")

	require.NoError(t, h.HandleMe(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Account   *domain.Account `json:"account"`
		CompanyID string          `json:"companyId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "idp-1", resp.Account.IdpID)
	assert.Equal(t, "co-1", resp.CompanyID)
}

func TestHandleMe_Unauthenticated(t *testing.T) {
	h := newAccountHandler(&stubAccounts{})
	c, _ := newAPIContext(t, http.MethodGet, "/api/session/me", "", nil)

	err := h.HandleMe(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestHandleRegister(t *testing.T) {
	h := newAccountHandler(&stubAccounts{})
	account := &domain.Account{IdpID: "idp-1"}
	payload := `{"idpId":"idp-1","emailAddress":"user@example.com","firstName":"Ada","lastName":"Lovelace"}`
	c, rec := newAPIContext(t, http.MethodPost, "/api/account/register", payload, account)

	require.NoError(t, h.HandleRegister(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var registered domain.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, "user@example.com", registered.EmailAddress)

	// The long-lived account cookie is rewritten with the stored profile.
	var wrote bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "account" && ck.Value != "" {
			wrote = true
		}
	}
	assert.True(t, wrote)
}

func TestHandleRegister_InvalidPayload(t *testing.T) {
	h := newAccountHandler(&stubAccounts{})
	account := &domain.Account{IdpID: "idp-1"}
	c, _ := newAPIContext(t, http.MethodPost, "/api/account/register",
		`{"idpId":"idp-1","emailAddress":"not-an-email"}`, account)

	err := h.HandleRegister(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandleRegister_Unauthenticated(t *testing.T) {
	h := newAccountHandler(&stubAccounts{})
	c, _ := newAPIContext(t, http.MethodPost, "/api/account/register",
		`{"idpId":"idp-1"}`, nil)

	err := h.HandleRegister(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestHandleRegister_BackendFailure(t *testing.T) {
	h := newAccountHandler(&stubAccounts{err: domain.ErrBackendUnavailable})
	account := &domain.Account{IdpID: "idp-1"}
	payload := `{"idpId":"idp-1","emailAddress":"user@example.com","firstName":"Ada","lastName":"Lovelace"}`
	c, _ := newAPIContext(t, http.MethodPost, "/api/account/register", payload, account)

	err := h.HandleRegister(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.Code)
}
