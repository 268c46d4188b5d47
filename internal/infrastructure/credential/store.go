package credential

import (
	"sync"
	"time"

	"crm-web/internal/domain"
)

// storeEntry holds a refresh credential with its eviction deadline.
type storeEntry struct {
	account   domain.ProviderAccount
	expiresAt time.Time
}

// Store is a thread-safe in-memory refresh-credential store indexed by
// home account id, local account id and email. It is the process-owned
// replacement for an identity-provider SDK's internal token cache; the
// cookie-backed token cache stays authoritative for access tokens.
// Implements domain.CredentialStore.
type Store struct {
	mu      sync.RWMutex
	byHome  map[string]*storeEntry
	byLocal map[string]*storeEntry
	byEmail map[string]*storeEntry
	ttl     time.Duration
}

// NewStore creates a credential store. Entries are evicted ttl after their
// last refresh, matching the provider's refresh-credential lifetime.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		byHome:  make(map[string]*storeEntry),
		byLocal: make(map[string]*storeEntry),
		byEmail: make(map[string]*storeEntry),
		ttl:     ttl,
	}
	go s.cleanupLoop()
	return s
}

// LookupByHomeID retrieves a credential handle by home account id.
func (s *Store) LookupByHomeID(homeAccountID string) (*domain.ProviderAccount, bool) {
	return s.lookup(s.byHome, homeAccountID)
}

// LookupByLocalID retrieves a credential handle by local account id.
func (s *Store) LookupByLocalID(localAccountID string) (*domain.ProviderAccount, bool) {
	return s.lookup(s.byLocal, localAccountID)
}

// LookupByEmail retrieves a credential handle by account email.
func (s *Store) LookupByEmail(email string) (*domain.ProviderAccount, bool) {
	return s.lookup(s.byEmail, email)
}

func (s *Store) lookup(index map[string]*storeEntry, key string) (*domain.ProviderAccount, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, found := index[key]
	if !found || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	account := entry.account
	return &account, true
}

// Store saves a credential handle under every non-empty key it carries.
func (s *Store) Store(account domain.ProviderAccount) {
	entry := &storeEntry{account: account, expiresAt: time.Now().Add(s.ttl)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if account.HomeAccountID != "" {
		s.byHome[account.HomeAccountID] = entry
	}
	if account.LocalAccountID != "" {
		s.byLocal[account.LocalAccountID] = entry
	}
	if account.Email != "" {
		s.byEmail[account.Email] = entry
	}
}

// Remove drops a credential handle from every index.
func (s *Store) Remove(account domain.ProviderAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byHome, account.HomeAccountID)
	delete(s.byLocal, account.LocalAccountID)
	delete(s.byEmail, account.Email)
}

// cleanup removes expired entries.
func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, index := range []map[string]*storeEntry{s.byHome, s.byLocal, s.byEmail} {
		for key, entry := range index {
			if now.After(entry.expiresAt) {
				delete(index, key)
			}
		}
	}
}

// cleanupLoop runs periodic cleanup of expired entries.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}
