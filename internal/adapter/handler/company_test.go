package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm-web/internal/domain"
	"crm-web/internal/infrastructure/cookie"
	"crm-web/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompanyHandler() *CompanyHandler {
	return NewCompanyHandler(usecase.NewSelectCompany(slog.New(slog.DiscardHandler)), validator.New())
}

// newAPIContext builds an authenticated JSON request context the way the
// gate would hand it to an API handler.
func newAPIContext(t *testing.T, method, target, body string, account *domain.Account, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("session.store", cookie.NewStore(c, cookie.Options{}))
	if account != nil {
		c.Set("session.account", account)
		c.Set("session.token", "tok-1")
	}
	return c, rec
}

func TestHandleCurrent(t *testing.T) {
	h := newCompanyHandler()
	account := &domain.Account{IdpID: "idp-1", DefaultCompanyID: "co-1"}
	c, rec := newAPIContext(t, http.MethodGet, "/api/current/company", "", account)

	require.NoError(t, h.HandleCurrent(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "co-1", resp["companyId"])
}

func TestHandleCurrent_PrefersCookie(t *testing.T) {
	h := newCompanyHandler()
	account := &domain.Account{IdpID: "idp-1", DefaultCompanyID: "co-1"}
	c, rec := newAPIContext(t, http.MethodGet, "/api/current/company", "", account,
		&http.Cookie{Name: "company", Value: "co-2"})

	require.NoError(t, h.HandleCurrent(c))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "co-2", resp["companyId"])
}

func TestHandleCurrent_Unauthenticated(t *testing.T) {
	h := newCompanyHandler()
	c, _ := newAPIContext(t, http.MethodGet, "/api/current/company", "", nil)

	err := h.HandleCurrent(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestHandleSwitch(t *testing.T) {
	h := newCompanyHandler()
	account := &domain.Account{IdpID: "idp-1", AvailableCompanies: []string{"co-1", "co-2"}}
	c, rec := newAPIContext(t, http.MethodPost, "/api/current/company",
		`{"companyId":"co-2"}`, account)

	require.NoError(t, h.HandleSwitch(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var wrote bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "company" && ck.Value == "co-2" {
			wrote = true
		}
	}
	assert.True(t, wrote)
}

func TestHandleSwitch_NotAllowed(t *testing.T) {
	h := newCompanyHandler()
	account := &domain.Account{IdpID: "idp-1", AvailableCompanies: []string{"co-1"}}
	c, rec := newAPIContext(t, http.MethodPost, "/api/current/company",
		`{"companyId":"co-9"}`, account)

	err := h.HandleSwitch(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	for _, ck := range rec.Result().Cookies() {
		assert.NotEqual(t, "company", ck.Name)
	}
}

func TestHandleSwitch_MissingCompanyID(t *testing.T) {
	h := newCompanyHandler()
	account := &domain.Account{IdpID: "idp-1"}
	c, _ := newAPIContext(t, http.MethodPost, "/api/current/company", `{}`, account)

	err := h.HandleSwitch(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandleSwitch_Unauthenticated(t *testing.T) {
	h := newCompanyHandler()
	c, _ := newAPIContext(t, http.MethodPost, "/api/current/company",
		`{"companyId":"co-1"}`, nil)

	err := h.HandleSwitch(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
