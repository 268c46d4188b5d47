package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crm-web/internal/domain"
)

// Tenant header attached to backend calls for multi-company accounts.
const companyHeader = "x-pc-company"

// AppError mirrors the backend's error payload.
type AppError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	IsOk   bool            `json:"isOk"`
	Value  json.RawMessage `json:"value"`
	Error  *AppError       `json:"error"`
	Status int             `json:"status,omitempty"`
}

// APIError is a non-ok backend envelope surfaced to callers.
type APIError struct {
	Status int
	Detail *AppError
}

func (e *APIError) Error() string {
	if e.Detail != nil && e.Detail.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Detail.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// BackendClient is the generic REST client for the internal backend API.
// Implements domain.AccountAPI for the profile endpoints the session core
// consumes.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBackendClient creates a backend client with tuned HTTP transport.
func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
	}
}

// Session binds the client to one request's bearer token and active company.
// Handlers call through the bound client and never manage the Authorization,
// Content-Type or tenant headers themselves.
func (c *BackendClient) Session(accessToken, companyID string) *SessionClient {
	return &SessionClient{backend: c, token: accessToken, company: companyID}
}

// CurrentAccount fetches the caller's profile. Implements domain.AccountAPI.
func (c *BackendClient) CurrentAccount(ctx context.Context, accessToken string) (*domain.Account, error) {
	var account domain.Account
	if err := c.Session(accessToken, "").Get(ctx, "/account/me", &account); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	if account.IdpID == "" {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

// Register submits the onboarding registration and returns the stored
// account. Implements domain.AccountAPI.
func (c *BackendClient) Register(ctx context.Context, accessToken string, account *domain.Account) (*domain.Account, error) {
	var registered domain.Account
	if err := c.Session(accessToken, "").Post(ctx, "/account/register", account, &registered); err != nil {
		return nil, err
	}
	return &registered, nil
}

// SessionClient is a BackendClient bound to one request's credentials.
type SessionClient struct {
	backend *BackendClient
	token   string
	company string
}

// Get performs a GET and decodes the envelope value into out.
func (c *SessionClient) Get(ctx context.Context, route string, out any) error {
	return c.do(ctx, http.MethodGet, route, nil, out)
}

// Post performs a POST with a JSON body and decodes the envelope value into out.
func (c *SessionClient) Post(ctx context.Context, route string, body, out any) error {
	return c.do(ctx, http.MethodPost, route, body, out)
}

// Put performs a PUT with a JSON body and decodes the envelope value into out.
func (c *SessionClient) Put(ctx context.Context, route string, body, out any) error {
	return c.do(ctx, http.MethodPut, route, body, out)
}

// Delete performs a DELETE.
func (c *SessionClient) Delete(ctx context.Context, route string) error {
	return c.do(ctx, http.MethodDelete, route, nil, nil)
}

func (c *SessionClient) do(ctx context.Context, method, route string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.backend.buildRoute(route), reader)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.company != "" {
		req.Header.Set(companyHeader, c.company)
	}

	resp, err := c.backend.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	var result envelope
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	if !result.IsOk {
		status := result.Status
		if status == 0 {
			status = resp.StatusCode
		}
		return &APIError{Status: status, Detail: result.Error}
	}

	if out != nil && len(result.Value) > 0 && string(result.Value) != "null" {
		if err := json.Unmarshal(result.Value, out); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
		}
	}
	return nil
}

func (c *BackendClient) buildRoute(route string) string {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return c.baseURL + route
}
