package usecase

import (
	"log/slog"

	"crm-web/internal/domain"

	"github.com/google/uuid"
)

// BeginLogin starts one authorization-code flow: it generates the proof-key
// pair and CSRF state, persists both in short-lived cookies and produces the
// provider authorization URL.
type BeginLogin struct {
	oauth  domain.OAuthGateway
	logger *slog.Logger
}

// NewBeginLogin creates a new BeginLogin usecase.
func NewBeginLogin(oauth domain.OAuthGateway, logger *slog.Logger) *BeginLogin {
	return &BeginLogin{oauth: oauth, logger: logger}
}

// Execute writes the flow cookies and returns the URL to redirect the
// browser to. redirectURL is the caller's intended post-login target.
func (uc *BeginLogin) Execute(store domain.SessionStore, redirectURL string) (string, error) {
	challenge, err := uc.oauth.GeneratePKCE()
	if err != nil {
		return "", err
	}
	store.SetPKCEChallenge(challenge)

	state := domain.OAuthState{
		CSRFToken:   uuid.NewString(),
		RedirectURL: redirectURL,
	}
	store.SetOAuthState(state)

	return uc.oauth.AuthCodeURL(state.Encode(), challenge), nil
}
