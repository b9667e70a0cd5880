package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, ttl time.Duration) (*Ledger, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	l := NewLedgerWithClient(redis.NewClient(&redis.Options{Addr: s.Addr()}), ttl)
	t.Cleanup(func() { l.Close() })
	return l, s
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, time.Hour)
	require.NoError(t, l.Ping(ctx))

	ok, err := l.Processed(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.MarkProcessed(ctx, "alice", "run-1"))
	ok, err = l.Processed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := s.Get("cloutcheck:processed:alice")
	require.NoError(t, err)
	assert.Equal(t, "run-1", v)
	assert.Equal(t, time.Hour, s.TTL("cloutcheck:processed:alice"))

	require.NoError(t, l.Forget(ctx, "alice"))
	ok, err = l.Processed(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedgerExpires(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, 0)
	require.NoError(t, l.MarkProcessed(ctx, "bob", "run-1"))
	assert.Equal(t, DefaultTTL, s.TTL("cloutcheck:processed:bob"))

	s.FastForward(DefaultTTL + time.Second)
	ok, err := l.Processed(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedgerUnavailable(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, time.Hour)
	s.Close()

	_, err := l.Processed(ctx, "alice")
	assert.Error(t, err)
	assert.Error(t, l.MarkProcessed(ctx, "alice", "run"))
	assert.Error(t, l.Ping(ctx))
}
