package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const defaultStateTTL = 10 * time.Minute

// StateStore hands out single-use anti-CSRF state values for the OAuth
// redirect and consumes them on callback. State lives in process memory,
// so concurrent logins through different processes will not see each
// other's state.
type StateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &StateStore{
		ttl:    ttl,
		states: make(map[string]time.Time),
	}
}

// Issue generates a fresh state value and records it with an expiry.
func (s *StateStore) Issue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(s.ttl)
	return state, nil
}

// Consume reports whether state was previously issued and still valid.
// A state can be consumed at most once.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return time.Now().Before(exp)
}
