package usecase

import (
	"context"
	"time"

	"crm-web/internal/domain"
)

// mockStore is an in-memory domain.SessionStore that records writes.
type mockStore struct {
	account    *domain.Account
	accountErr error
	setAccount []*domain.Account

	cached    *domain.CachedToken
	cachedErr error
	putCached []domain.CachedToken

	sessionTokens []string

	company      string
	hasCompany   bool
	setCompanies []string

	oauthState    *domain.OAuthState
	oauthStateErr error
	setStates     []domain.OAuthState

	challenge     *domain.PKCEChallenge
	challengeErr  error
	setChallenges []domain.PKCEChallenge

	clearedAccount  int
	clearedCached   int
	clearedSession  int
	clearedCompany  int
	clearedOAuthTxn int
}

func (m *mockStore) Account() (*domain.Account, error) {
	if m.accountErr != nil {
		return nil, m.accountErr
	}
	if m.account == nil {
		return nil, domain.ErrCookieAbsent
	}
	return m.account, nil
}

func (m *mockStore) SetAccount(account *domain.Account) { m.setAccount = append(m.setAccount, account) }
func (m *mockStore) ClearAccount()                      { m.clearedAccount++ }

func (m *mockStore) CachedToken() (*domain.CachedToken, error) {
	if m.cachedErr != nil {
		return nil, m.cachedErr
	}
	if m.cached == nil {
		return nil, domain.ErrCookieAbsent
	}
	return m.cached, nil
}

func (m *mockStore) PutCachedToken(token string, expiresAt time.Time) {
	m.putCached = append(m.putCached, domain.CachedToken{Token: token, ExpiresAt: expiresAt})
}
func (m *mockStore) ClearCachedToken() { m.clearedCached++ }

func (m *mockStore) SetSessionToken(token string, expiresAt time.Time) {
	m.sessionTokens = append(m.sessionTokens, token)
}
func (m *mockStore) ClearSessionToken() { m.clearedSession++ }

func (m *mockStore) Company() (string, bool) { return m.company, m.hasCompany }
func (m *mockStore) SetCompany(id string)    { m.setCompanies = append(m.setCompanies, id) }
func (m *mockStore) ClearCompany()           { m.clearedCompany++ }

func (m *mockStore) OAuthState() (*domain.OAuthState, error) {
	if m.oauthStateErr != nil {
		return nil, m.oauthStateErr
	}
	if m.oauthState == nil {
		return nil, domain.ErrCookieAbsent
	}
	return m.oauthState, nil
}

func (m *mockStore) SetOAuthState(state domain.OAuthState) {
	m.setStates = append(m.setStates, state)
}

func (m *mockStore) PKCEChallenge() (*domain.PKCEChallenge, error) {
	if m.challengeErr != nil {
		return nil, m.challengeErr
	}
	if m.challenge == nil {
		return nil, domain.ErrCookieAbsent
	}
	return m.challenge, nil
}

func (m *mockStore) SetPKCEChallenge(challenge domain.PKCEChallenge) {
	m.setChallenges = append(m.setChallenges, challenge)
}

func (m *mockStore) ClearOAuthTransaction() { m.clearedOAuthTxn++ }

// mockOAuth is a scriptable domain.OAuthGateway that counts calls.
type mockOAuth struct {
	pkce       domain.PKCEChallenge
	pkceErr    error
	resolved   *domain.ProviderAccount
	rebuilt    *domain.ProviderAccount
	silentFn   func(handle *domain.ProviderAccount) (*domain.TokenResult, error)
	exchangeFn func(code, verifier string) (*domain.TokenResult, error)

	resolveCalls     int
	reconstructCalls int
	silentCalls      int
	exchangeCalls    int
}

func (m *mockOAuth) GeneratePKCE() (domain.PKCEChallenge, error) {
	if m.pkceErr != nil {
		return domain.PKCEChallenge{}, m.pkceErr
	}
	return m.pkce, nil
}

func (m *mockOAuth) AuthCodeURL(state string, challenge domain.PKCEChallenge) string {
	return "https://login.example.com/authorize?state=" + state
}

func (m *mockOAuth) ExchangeCode(ctx context.Context, code, verifier string) (*domain.TokenResult, error) {
	m.exchangeCalls++
	if m.exchangeFn != nil {
		return m.exchangeFn(code, verifier)
	}
	return nil, domain.ErrAuthExchange
}

func (m *mockOAuth) ResolveAccount(homeAccountID, localAccountID string) (*domain.ProviderAccount, bool) {
	m.resolveCalls++
	return m.resolved, m.resolved != nil
}

func (m *mockOAuth) ReconstructAccount(account *domain.Account) (*domain.ProviderAccount, bool) {
	m.reconstructCalls++
	return m.rebuilt, m.rebuilt != nil
}

func (m *mockOAuth) AcquireTokenSilent(ctx context.Context, handle *domain.ProviderAccount) (*domain.TokenResult, error) {
	m.silentCalls++
	if m.silentFn != nil {
		return m.silentFn(handle)
	}
	return nil, nil
}

// mockAccounts is a scriptable domain.AccountAPI.
type mockAccounts struct {
	current    *domain.Account
	currentErr error
	registerFn func(account *domain.Account) (*domain.Account, error)

	currentCalls  int
	registerCalls int
	gotToken      string
}

func (m *mockAccounts) CurrentAccount(ctx context.Context, accessToken string) (*domain.Account, error) {
	m.currentCalls++
	m.gotToken = accessToken
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	return m.current, nil
}

func (m *mockAccounts) Register(ctx context.Context, accessToken string, account *domain.Account) (*domain.Account, error) {
	m.registerCalls++
	m.gotToken = accessToken
	if m.registerFn != nil {
		return m.registerFn(account)
	}
	return account, nil
}
