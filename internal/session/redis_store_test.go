package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := DialRedis(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	s := Session{AdminID: 3, LoggedIn: true, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, "abc", s))

	assert.True(t, mr.Exists("laludev:session:abc"))
	ttl := mr.TTL("laludev:session:abc")
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, s.AdminID, got.AdminID)
	assert.True(t, got.ExpiresAt.Equal(s.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreKeyExpires(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()

	s := Session{AdminID: 1, LoggedIn: true, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Save(ctx, "k", s))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	n, err := store.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStoreRejectsPastExpiry(t *testing.T) {
	_, store := newTestRedis(t)

	err := store.Save(context.Background(), "k", Session{ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr, store := newTestRedis(t)
	require.NoError(t, mr.Set("laludev:session:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestGateWithRedisStore(t *testing.T) {
	_, store := newTestRedis(t)
	g := NewGate(store, time.Hour, nil)
	ctx := context.Background()

	token, _, err := g.Login(ctx, 9)
	require.NoError(t, err)

	s, ok := g.Check(ctx, token)
	require.True(t, ok)
	assert.Equal(t, int64(9), s.AdminID)

	require.NoError(t, g.Logout(ctx, token))
	_, ok = g.Check(ctx, token)
	assert.False(t, ok)
}

func TestDialRedisUnreachable(t *testing.T) {
	_, err := DialRedis(context.Background(), "127.0.0.1:1", "")
	assert.Error(t, err)
}

var _ Store = (*RedisStore)(nil)
