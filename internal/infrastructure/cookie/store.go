package cookie

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crm-web/internal/domain"

	"github.com/labstack/echo/v4"
)

// Cookie names for the persisted session state.
const (
	accountCookie        = "account"
	sessionCookie        = "session"
	companyCookie        = "company"
	cachedTokenCookie    = "cached_token"
	oauthStateCookie     = "oauth_state"
	oauthChallengeCookie = "oauth_challenge"
)

// Options configures how session cookies are written.
type Options struct {
	Secure       bool          // Secure attribute, on in production
	AccountTTL   time.Duration // account cookie lifetime
	CompanyTTL   time.Duration // company cookie rolling lifetime
	OAuthFlowTTL time.Duration // oauth_state / oauth_challenge lifetime
}

// Store implements domain.SessionStore on top of an Echo request/response
// pair. All cookies are httpOnly, path=/, SameSite=Lax. Writes and deletes
// made during a request shadow the inbound cookie jar, so a just-deleted
// cookie reads as absent before the response ever reaches the client.
type Store struct {
	c       echo.Context
	opts    Options
	pending map[string]*string
}

// NewStore creates a session store bound to one request.
func NewStore(c echo.Context, opts Options) *Store {
	if opts.AccountTTL <= 0 {
		opts.AccountTTL = 30 * 24 * time.Hour
	}
	if opts.CompanyTTL <= 0 {
		opts.CompanyTTL = 24 * time.Hour
	}
	if opts.OAuthFlowTTL <= 0 {
		opts.OAuthFlowTTL = 10 * time.Minute
	}
	return &Store{c: c, opts: opts, pending: make(map[string]*string)}
}

// Account reads the account cookie. Returns domain.ErrCookieAbsent when
// missing and domain.ErrCookieDecode when the payload is malformed.
func (s *Store) Account() (*domain.Account, error) {
	var account domain.Account
	if err := s.readJSON(accountCookie, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SetAccount persists the account with its long-lived expiry, independent
// of token expiry.
func (s *Store) SetAccount(account *domain.Account) {
	s.writeJSON(accountCookie, account, int(s.opts.AccountTTL.Seconds()))
}

// ClearAccount deletes the account cookie.
func (s *Store) ClearAccount() {
	s.delete(accountCookie)
}

// CachedToken reads the cached-token cookie.
func (s *Store) CachedToken() (*domain.CachedToken, error) {
	var token domain.CachedToken
	if err := s.readJSON(cachedTokenCookie, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// PutCachedToken replaces the cached token wholesale. The cookie max-age is
// the remaining seconds to expiry, floored at zero, so the cookie self-expires
// in lockstep with the token.
func (s *Store) PutCachedToken(token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	s.writeJSON(cachedTokenCookie, domain.CachedToken{Token: token, ExpiresAt: expiresAt}, maxAge)
}

// ClearCachedToken deletes the cached-token cookie.
func (s *Store) ClearCachedToken() {
	s.delete(cachedTokenCookie)
}

// SetSessionToken mirrors the raw access token in the session cookie.
func (s *Store) SetSessionToken(token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	s.write(sessionCookie, token, maxAge)
}

// ClearSessionToken deletes the session cookie.
func (s *Store) ClearSessionToken() {
	s.delete(sessionCookie)
}

// Company reads the active company id, if any.
func (s *Store) Company() (string, bool) {
	return s.read(companyCookie)
}

// SetCompany persists the active company with its short rolling expiry.
func (s *Store) SetCompany(id string) {
	s.write(companyCookie, id, int(s.opts.CompanyTTL.Seconds()))
}

// ClearCompany deletes the company cookie.
func (s *Store) ClearCompany() {
	s.delete(companyCookie)
}

// OAuthState reads the in-flight authorization state.
func (s *Store) OAuthState() (*domain.OAuthState, error) {
	raw, ok := s.read(oauthStateCookie)
	if !ok {
		return nil, domain.ErrCookieAbsent
	}
	return domain.DecodeOAuthState(raw)
}

// SetOAuthState stores the authorization state for the flow's short window.
func (s *Store) SetOAuthState(state domain.OAuthState) {
	s.write(oauthStateCookie, state.Encode(), int(s.opts.OAuthFlowTTL.Seconds()))
}

// PKCEChallenge reads the in-flight proof-key pair.
func (s *Store) PKCEChallenge() (*domain.PKCEChallenge, error) {
	raw, ok := s.read(oauthChallengeCookie)
	if !ok {
		return nil, domain.ErrCookieAbsent
	}
	return domain.DecodePKCEChallenge(raw)
}

// SetPKCEChallenge stores the proof-key pair for the flow's short window.
func (s *Store) SetPKCEChallenge(challenge domain.PKCEChallenge) {
	s.write(oauthChallengeCookie, challenge.Encode(), int(s.opts.OAuthFlowTTL.Seconds()))
}

// ClearOAuthTransaction deletes both flow cookies once a callback has
// consumed them, closing the replay window instead of waiting out the TTL.
func (s *Store) ClearOAuthTransaction() {
	s.delete(oauthStateCookie)
	s.delete(oauthChallengeCookie)
}

// read returns the effective cookie value, consulting pending writes first.
// An empty pending value reads as absent, matching how an empty inbound
// cookie reads on the next request.
func (s *Store) read(name string) (string, bool) {
	if value, ok := s.pending[name]; ok {
		if value == nil || *value == "" {
			return "", false
		}
		return *value, true
	}
	ck, err := s.c.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// readJSON decodes a base64 JSON cookie payload into out.
func (s *Store) readJSON(name string, out any) error {
	value, ok := s.read(name)
	if !ok {
		return domain.ErrCookieAbsent
	}
	raw, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCookieDecode, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCookieDecode, err)
	}
	return nil
}

// writeJSON stores v as base64 JSON. Raw JSON is not cookie-safe; net/http
// strips quotes and commas from cookie values.
func (s *Store) writeJSON(name string, v any, maxAge int) {
	raw, _ := json.Marshal(v)
	s.write(name, base64.URLEncoding.EncodeToString(raw), maxAge)
}

func (s *Store) write(name, value string, maxAge int) {
	s.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.pending[name] = &value
}

// delete expires a cookie with an empty value and zero max-age.
func (s *Store) delete(name string) {
	s.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.pending[name] = nil
}
