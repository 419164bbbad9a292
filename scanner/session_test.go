package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb, time.Minute), mr
}

func TestScanSessionPendingThenAccept(t *testing.T) {
	s, mr := newTestSessionStore(t)
	ctx := context.Background()

	sid, err := s.Start(ctx)
	require.NoError(t, err)

	code, ok, err := s.Observe(ctx, sid, "654321", 80, t0)
	require.NoError(t, err)
	assert.False(t, ok, "single frame stays pending")
	assert.Empty(t, code)
	// pending 时窗口留在 Redis 且 TTL 被续上
	assert.Positive(t, mr.TTL(scanKey(sid)))

	code, ok, err = s.Observe(ctx, sid, "654321", 60, t0.Add(400*time.Millisecond))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "654321", code)

	// 接受即删会话，再喂帧等于没会话
	_, _, err = s.Observe(ctx, sid, "654321", 80, t0.Add(time.Second))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestScanSessionUnknownOrExpired(t *testing.T) {
	s, mr := newTestSessionStore(t)
	ctx := context.Background()

	_, _, err := s.Observe(ctx, "no-such-session", "654321", 80, t0)
	assert.ErrorIs(t, err, ErrNoSession)

	sid, err := s.Start(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute) // 跑过 TTL
	_, _, err = s.Observe(ctx, sid, "654321", 80, t0)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestScanSessionStop(t *testing.T) {
	s, _ := newTestSessionStore(t)
	ctx := context.Background()

	sid, err := s.Start(ctx)
	require.NoError(t, err)
	s.Stop(ctx, sid)

	_, _, err = s.Observe(ctx, sid, "654321", 80, t0)
	assert.ErrorIs(t, err, ErrNoSession)
}
