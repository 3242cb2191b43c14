// Package authstate keeps the short-lived CSRF state tokens issued during
// login initiation. Tokens are single use: validation removes the entry
// whatever the outcome, so a state can never be replayed.
package authstate

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

var (
	ErrStateNotFound = errors.New("state not found")
	ErrStateExpired  = errors.New("state expired")
)

const (
	// DefaultTTL matches the 600 second window the callback enforces.
	DefaultTTL = 10 * time.Minute

	defaultSweepInterval = time.Minute
)

// Store is an in-process, mutex-guarded map of state token to issuance time.
// Each server process has its own store, so a login initiated on one process
// cannot complete on another.
type Store struct {
	mu      sync.Mutex
	states  map[string]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
	done    chan struct{}
	once    sync.Once
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// NewStore creates a state store and starts a background sweep that evicts
// entries for logins that were started but never completed.
func NewStore(options ...Option) *Store {
	s := &Store{
		states:  make(map[string]time.Time),
		ttl:     DefaultTTL,
		nowFunc: time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	go s.sweepLoop()
	return s
}

// Issue generates a cryptographically random opaque token and records it with
// the current time.
func (s *Store) Issue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	s.states[state] = s.nowFunc()
	s.mu.Unlock()

	return state, nil
}

// ValidateAndConsume checks the token and removes it regardless of outcome.
// It returns ErrStateNotFound for unknown tokens and ErrStateExpired when the
// token is older than the TTL.
func (s *Store) ValidateAndConsume(state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuedAt, ok := s.states[state]
	if !ok {
		return ErrStateNotFound
	}
	delete(s.states, state)

	if s.nowFunc().Sub(issuedAt) > s.ttl {
		return ErrStateExpired
	}
	return nil
}

// Len reports the number of live states.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Close stops the background sweep.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for state, issuedAt := range s.states {
		if now.Sub(issuedAt) > s.ttl {
			delete(s.states, state)
		}
	}
}
