package domain

import "errors"

// Cookie errors.
var (
	ErrCookieAbsent = errors.New("cookie not present")
	ErrCookieDecode = errors.New("cookie payload malformed")
)

// Authorization flow errors.
var (
	ErrMissingState       = errors.New("missing state parameter")
	ErrMissingStateCookie = errors.New("missing authentication state cookie")
	ErrInvalidStateData   = errors.New("invalid state data")
	ErrCSRFMismatch       = errors.New("authentication state mismatch")
	ErrMissingCode        = errors.New("missing authorization code")
	ErrMissingVerifier    = errors.New("missing code verifier")
	ErrAuthExchange       = errors.New("authorization code exchange failed")
)

// External collaborator errors.
var (
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrBackendUnavailable  = errors.New("backend API unavailable")
	ErrAccountNotFound     = errors.New("account not found")
)

// Tenant selection errors.
var (
	ErrCompanyNotAllowed = errors.New("company not available to account")
)

// Request validation errors.
var (
	ErrInvalidPayload = errors.New("invalid request payload")
)
