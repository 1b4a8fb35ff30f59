package registration

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T, perMinute int) *Guard {
	g, err := NewGuard(perMinute, time.Hour)
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func TestGuardFinishKeepsConfirmation(t *testing.T) {
	g := newTestGuard(t, 0)

	for i := 0; i < 2000; i++ {
		token := fmt.Sprintf("token-%d", i)
		prior, err := g.Begin(token)
		require.NoError(t, err)
		require.Nil(t, prior)
		require.True(t, g.Finish(token, &Confirmation{SubmissionID: token}))
	}

	for i := 0; i < 2000; i++ {
		token := fmt.Sprintf("token-%d", i)
		c, ok := g.Completed(token)
		require.True(t, ok, token)
		require.Equal(t, token, c.SubmissionID)
	}
}

func TestGuardFailedFinishReleasesToken(t *testing.T) {
	g := newTestGuard(t, 0)

	_, err := g.Begin("t")
	require.NoError(t, err)
	_, err = g.Begin("t")
	require.ErrorIs(t, err, ErrInFlight)

	require.True(t, g.Finish("t", nil))
	_, ok := g.Completed("t")
	require.False(t, ok)

	_, err = g.Begin("t")
	require.NoError(t, err)
}

func TestGuardAllowPerClient(t *testing.T) {
	g := newTestGuard(t, 2)

	require.True(t, g.Allow("10.0.0.1"))
	require.True(t, g.Allow("10.0.0.1"))
	require.False(t, g.Allow("10.0.0.1"))
	require.True(t, g.Allow("10.0.0.2"))
}

func TestGuardLimiterExpires(t *testing.T) {
	g := newTestGuard(t, 1)
	g.limiterTTL = 50 * time.Millisecond

	require.True(t, g.Allow("10.0.0.1"))
	require.False(t, g.Allow("10.0.0.1"))

	// The idle limiter is dropped, the client starts over with a full bucket.
	require.Eventually(t, func() bool {
		_, ok := g.limiters.Get("10.0.0.1")
		return !ok
	}, time.Second, 10*time.Millisecond)
	require.True(t, g.Allow("10.0.0.1"))
}

func TestGuardUnlimited(t *testing.T) {
	g := newTestGuard(t, 0)
	for i := 0; i < 100; i++ {
		require.True(t, g.Allow("10.0.0.1"))
	}
}
