package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	"github.com/perimetra/tenantcore/pkg/session"
)

const issuingIP = "203.0.113.7"

func newManager(t *testing.T, opts ...session.ManagerOption) (*session.Manager, *session.MemoryStore) {
	t.Helper()
	tokens, err := accesstoken.New([]byte("0123456789abcdef0123456789abcdef"), "tenantcore", 15*time.Minute)
	require.NoError(t, err)
	store := session.NewMemoryStore()
	return session.NewManager(store, tokens, 7*24*time.Hour, opts...), store
}

func TestIssue_ReturnsUsableCredentials(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()

	creds, err := mgr.Issue(ctx, uuid.New(), uuid.New(), issuingIP)
	require.NoError(t, err)
	assert.NotEmpty(t, creds.AccessToken)
	assert.NotEmpty(t, creds.RefreshToken)
	assert.Equal(t, int64(900), creds.ExpiresIn)
}

// Every pair records the client address it was minted for, and a
// rotation stamps the successor with the rotating client's address.
func TestIssueRotate_StampIssuingIP(t *testing.T) {
	mgr, store := newManager(t)
	ctx := context.Background()
	tenantID := uuid.New()

	first, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	second, err := mgr.Rotate(ctx, tenantID, first.RefreshToken, "198.51.100.4")
	require.NoError(t, err)

	pairs, err := store.ListActive(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, second.SessionID, pairs[0].ID)
	assert.Equal(t, "198.51.100.4", pairs[0].IssuingIP)

	consumed, err := store.GetByID(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, issuingIP, consumed.IssuingIP)
}

// A rotated token is dead, and presenting it again kills its successor
// chain.
func TestRotate_SingleUseWithReuseCascade(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	tenantID := uuid.New()

	first, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	second, err := mgr.Rotate(ctx, tenantID, first.RefreshToken, issuingIP)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Reusing the consumed token fails and revokes the successor.
	_, err = mgr.Rotate(ctx, tenantID, first.RefreshToken, issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)

	_, err = mgr.Rotate(ctx, tenantID, second.RefreshToken, issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestRotate_CascadeCoversWholeChain(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	tenantID := uuid.New()

	first, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	// Build a chain of several rotations, then replay the very first
	// token. Every later link must die.
	current := first
	var chain []*session.Credentials
	for i := 0; i < 4; i++ {
		next, err := mgr.Rotate(ctx, tenantID, current.RefreshToken, issuingIP)
		require.NoError(t, err)
		chain = append(chain, next)
		current = next
	}

	_, err = mgr.Rotate(ctx, tenantID, first.RefreshToken, issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)

	for _, creds := range chain {
		_, err := mgr.Rotate(ctx, tenantID, creds.RefreshToken, issuingIP)
		assert.ErrorIs(t, err, session.ErrInvalidToken)
	}
}

func TestRotate_UnknownToken(t *testing.T) {
	mgr, _ := newManager(t)

	_, err := mgr.Rotate(context.Background(), uuid.New(), "never-issued", issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)
}

// A token rotated under the wrong tenant is refused with the uniform
// error and is not consumed: it keeps working where it belongs.
func TestRotate_WrongTenant(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	tenantID := uuid.New()

	creds, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	_, err = mgr.Rotate(ctx, uuid.New(), creds.RefreshToken, issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)

	_, err = mgr.Rotate(ctx, tenantID, creds.RefreshToken, issuingIP)
	require.NoError(t, err)
}

func TestRotate_ExpiredToken(t *testing.T) {
	now := time.Now()
	mgr, _ := newManager(t, session.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	tenantID := uuid.New()

	creds, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	now = now.Add(8 * 24 * time.Hour)
	_, err = mgr.Rotate(ctx, tenantID, creds.RefreshToken, issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestRotate_ConcurrentSingleWinner(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	tenantID := uuid.New()

	creds, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	const racers = 20
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Rotate(ctx, tenantID, creds.RefreshToken, issuingIP)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, session.ErrInvalidToken)
		}
	}
	assert.Equal(t, 1, wins, "exactly one rotation may succeed")
}

func TestRevoke_Idempotent(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	tenantID := uuid.New()

	creds, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	require.NoError(t, mgr.Revoke(ctx, creds.RefreshToken))
	require.NoError(t, mgr.Revoke(ctx, creds.RefreshToken))

	_, err = mgr.Rotate(ctx, tenantID, creds.RefreshToken, issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestRevoke_UnknownTokenSucceeds(t *testing.T) {
	mgr, _ := newManager(t)
	require.NoError(t, mgr.Revoke(context.Background(), "never-issued"))
}

func TestRevokeAll(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()
	tenantID, principalID := uuid.New(), uuid.New()

	var all []*session.Credentials
	for i := 0; i < 3; i++ {
		creds, err := mgr.Issue(ctx, tenantID, principalID, issuingIP)
		require.NoError(t, err)
		all = append(all, creds)
	}
	other, err := mgr.Issue(ctx, tenantID, uuid.New(), issuingIP)
	require.NoError(t, err)

	n, err := mgr.RevokeAll(ctx, tenantID, principalID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for _, creds := range all {
		_, err := mgr.Rotate(ctx, tenantID, creds.RefreshToken, issuingIP)
		assert.ErrorIs(t, err, session.ErrInvalidToken)
	}

	// Unrelated principal keeps its session.
	_, err = mgr.Rotate(ctx, tenantID, other.RefreshToken, issuingIP)
	require.NoError(t, err)
}

func TestDeleteExpired_KeepsActivePairs(t *testing.T) {
	now := time.Now()
	mgr, _ := newManager(t, session.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	staleTenant, liveTenant := uuid.New(), uuid.New()

	stale, err := mgr.Issue(ctx, staleTenant, uuid.New(), issuingIP)
	require.NoError(t, err)

	now = now.Add(40 * 24 * time.Hour)
	live, err := mgr.Issue(ctx, liveTenant, uuid.New(), issuingIP)
	require.NoError(t, err)

	n, err := mgr.DeleteExpired(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = mgr.Rotate(ctx, staleTenant, stale.RefreshToken, issuingIP)
	require.ErrorIs(t, err, session.ErrInvalidToken)
	_, err = mgr.Rotate(ctx, liveTenant, live.RefreshToken, issuingIP)
	require.NoError(t, err)
}
