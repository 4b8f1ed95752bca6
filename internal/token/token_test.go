package token

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer("test-secret-test-secret-test-secret", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return iss
}

func TestIssueAndParsePair(t *testing.T) {
	iss := newIssuer(t)

	pair, err := iss.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	access, err := iss.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), access.Subject)
	assert.Equal(t, KindAccess, access.Kind)
	assert.NotEmpty(t, access.ID)

	refresh, err := iss.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, KindRefresh, refresh.Kind)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestParseRejectsWrongKind(t *testing.T) {
	iss := newIssuer(t)
	pair, err := iss.IssuePair(7)
	require.NoError(t, err)

	_, err = iss.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = iss.ParseRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestParseRejectsTampering(t *testing.T) {
	iss := newIssuer(t)
	pair, err := iss.IssuePair(7)
	require.NoError(t, err)

	_, err = iss.ParseAccess(pair.Access + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewIssuer("another-secret-another-secret-zz", time.Minute, time.Hour)
	require.NoError(t, err)
	_, err = other.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.ParseAccess("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := newIssuer(t)
	issued := time.Now().Add(-time.Hour)
	iss.now = func() time.Time { return issued }
	pair, err := iss.IssuePair(7)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	list := NewDenylist(client)
	ctx := context.Background()

	revoked, err := list.Revoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = list.Revoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Entries expire with the token they guard.
	mr.FastForward(2 * time.Hour)
	revoked, err = list.Revoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Revoking an already-expired token is a no-op.
	require.NoError(t, list.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = list.Revoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
