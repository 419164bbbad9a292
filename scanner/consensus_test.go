package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestConsensusAcceptsRepeatAgreement(t *testing.T) {
	c := NewConsensus()

	code, ok := c.Observe("654321", 80, t0)
	assert.False(t, ok, "single frame must not be accepted")
	assert.Empty(t, code)

	code, ok = c.Observe("654321", 60, t0.Add(400*time.Millisecond))
	require.True(t, ok, "count=2, avg=70>50, recent")
	assert.Equal(t, "654321", code)
}

func TestConsensusNoAgreementAcrossCodes(t *testing.T) {
	c := NewConsensus()

	_, ok := c.Observe("654321", 80, t0)
	assert.False(t, ok)
	_, ok = c.Observe("111111", 90, t0.Add(100*time.Millisecond))
	assert.False(t, ok, "no code reached count=2")
}

func TestConsensusRejectsLowConfidence(t *testing.T) {
	c := NewConsensus()

	_, ok := c.Observe("654321", 40, t0)
	assert.False(t, ok)
	_, ok = c.Observe("654321", 40, t0.Add(300*time.Millisecond))
	assert.False(t, ok, "avg=40 is not > 50")
}

func TestConsensusRejectsBadFormat(t *testing.T) {
	c := NewConsensus()

	_, ok := c.Observe("12a456", 99, t0)
	assert.False(t, ok)
	_, ok = c.Observe("12a456", 99, t0.Add(200*time.Millisecond))
	assert.False(t, ok, "format must be 6 digits even with high agreement")
}

func TestConsensusRequiresRecentRepeat(t *testing.T) {
	c := NewConsensus()

	_, ok := c.Observe("654321", 80, t0)
	assert.False(t, ok)

	// 两帧隔了 2s：仍在 3s 窗口内不被逐出，但不算连续一致
	_, ok = c.Observe("654321", 80, t0.Add(2*time.Second))
	assert.False(t, ok, "slow repeats must not be accepted")

	_, ok = c.Observe("654321", 80, t0.Add(2*time.Second+300*time.Millisecond))
	assert.True(t, ok, "a close repeat right after is enough")
}

func TestConsensusEvictsStaleCandidates(t *testing.T) {
	c := NewConsensus()

	_, ok := c.Observe("654321", 80, t0)
	assert.False(t, ok)

	// 窗口 3s，4s 后旧样本应被逐出，这一帧等于从头数
	_, ok = c.Observe("654321", 80, t0.Add(4*time.Second))
	assert.False(t, ok, "stale first observation must not count")

	_, ok = c.Observe("654321", 80, t0.Add(4*time.Second+300*time.Millisecond))
	assert.True(t, ok, "two fresh observations inside the window")
}

func TestConsensusEmitsOnceThenResets(t *testing.T) {
	c := NewConsensus()

	c.Observe("654321", 80, t0)
	_, ok := c.Observe("654321", 80, t0.Add(200*time.Millisecond))
	require.True(t, ok)

	// 接受后窗口清空，同一码要重新凑数
	_, ok = c.Observe("654321", 80, t0.Add(400*time.Millisecond))
	assert.False(t, ok)
	assert.Empty(t, c.Snapshot(), "window starts empty after acceptance")

	_, ok = c.Observe("654321", 80, t0.Add(600*time.Millisecond))
	assert.True(t, ok)
}

func TestConsensusAverageIsIncremental(t *testing.T) {
	c := NewConsensus()

	c.Observe("222222", 30, t0)
	c.Observe("222222", 40, t0.Add(100*time.Millisecond))
	// avg = (30+40+80)/3 = 50，不是严格大于，仍拒绝
	_, ok := c.Observe("222222", 80, t0.Add(200*time.Millisecond))
	assert.False(t, ok)

	// 再来一帧拉高均值：(30+40+80+90)/4 = 60 > 50
	_, ok = c.Observe("222222", 90, t0.Add(300*time.Millisecond))
	assert.True(t, ok)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c := NewConsensus()
	c.Observe("654321", 80, t0)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "654321", snap[0].Code)
	assert.Equal(t, 1, snap[0].Count)
	assert.InDelta(t, 80, snap[0].AvgConfidence, 1e-9)

	// 另一个实例接着数（Redis 会话就是这么用的）
	c2 := NewConsensus()
	c2.Restore(snap)
	code, ok := c2.Observe("654321", 60, t0.Add(500*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "654321", code)
}
