package authstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndConsume(t *testing.T) {
	s := NewStore()
	defer s.Close()

	state, err := s.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	require.NoError(t, s.ValidateAndConsume(state))
}

func TestStateIsSingleUse(t *testing.T) {
	s := NewStore()
	defer s.Close()

	state, err := s.Issue()
	require.NoError(t, err)

	require.NoError(t, s.ValidateAndConsume(state))
	require.ErrorIs(t, s.ValidateAndConsume(state), ErrStateNotFound)
}

func TestUnknownStateFails(t *testing.T) {
	s := NewStore()
	defer s.Close()

	require.ErrorIs(t, s.ValidateAndConsume("never-issued"), ErrStateNotFound)
}

func TestExpiredStateFailsAndIsConsumed(t *testing.T) {
	now := time.Now()
	s := NewStore(WithNowFunc(func() time.Time { return now }))
	defer s.Close()

	state, err := s.Issue()
	require.NoError(t, err)

	now = now.Add(DefaultTTL + time.Second)
	require.ErrorIs(t, s.ValidateAndConsume(state), ErrStateExpired)

	// Expired validation still consumes the entry.
	require.ErrorIs(t, s.ValidateAndConsume(state), ErrStateNotFound)
}

func TestSweepEvictsStaleStates(t *testing.T) {
	now := time.Now()
	s := NewStore(WithTTL(time.Minute), WithNowFunc(func() time.Time { return now }))
	defer s.Close()

	_, err := s.Issue()
	require.NoError(t, err)
	_, err = s.Issue()
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	now = now.Add(2 * time.Minute)
	s.sweep()
	require.Equal(t, 0, s.Len())
}

func TestIssueGeneratesUniqueStates(t *testing.T) {
	s := NewStore()
	defer s.Close()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		state, err := s.Issue()
		require.NoError(t, err)
		require.False(t, seen[state])
		seen[state] = true
	}
}
