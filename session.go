package swiftgate

import (
	"fmt"
	"sync"
)

// DefaultContainer is used when a session is created without one.
const DefaultContainer = "documents"

// Session holds the upstream account, the default container and the current
// storage token. The token is written by Authenticate and read by every relay
// call; a Session may be shared by concurrent transfers.
type Session struct {
	account   string
	container string

	mu    sync.RWMutex
	token string
}

// NewSession creates an unauthenticated session. An empty container falls
// back to DefaultContainer.
func NewSession(account, container string) (*Session, error) {
	if !IsValidName(account) {
		return nil, fmt.Errorf("new session: %w: invalid account %q", ErrInvalidInput, account)
	}
	if container == "" {
		container = DefaultContainer
	}
	if !IsValidName(container) {
		return nil, fmt.Errorf("new session: %w: invalid container %q", ErrInvalidInput, container)
	}
	return &Session{account: account, container: container}, nil
}

func (s *Session) Account() string { return s.account }

func (s *Session) Container() string { return s.container }

// Token returns the current storage token, or "" before authentication.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// resolve returns the token and the container to use for a call.
func (s *Session) resolve(container string) (token, resolved string, err error) {
	token = s.Token()
	if token == "" {
		return "", "", ErrNotAuthenticated
	}
	if container == "" {
		return token, s.container, nil
	}
	if !IsValidName(container) {
		return "", "", fmt.Errorf("%w: invalid container %q", ErrInvalidInput, container)
	}
	return token, container, nil
}
