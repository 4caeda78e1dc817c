package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Session is immutable once issued; the registry only inserts and deletes.
type Session struct {
	Token       string `json:"token"`
	IdentityID  uint   `json:"identity_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Registry maps opaque bearer tokens to identities for the lifetime of the
// process. There is no expiry; a token stays valid until Logout.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Login issues a fresh 128-bit random token and records the session.
// It fails only if the entropy source does.
func (r *Registry) Login(identityID uint, displayName, role string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: generating token: %w", err)
	}
	token := hex.EncodeToString(buf)

	r.mu.Lock()
	r.sessions[token] = Session{
		Token:       token,
		IdentityID:  identityID,
		DisplayName: displayName,
		Role:        role,
	}
	r.mu.Unlock()

	return token, nil
}

// Resolve reports the session for token. An unknown or logged-out token is
// not an error, just absent.
func (r *Registry) Resolve(token string) (Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[token]
	r.mu.RUnlock()
	return s, ok
}

// Logout drops the session. Dropping an absent token is a no-op.
func (r *Registry) Logout(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
