package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slidelab/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore 给浏览器扫码用：前端逐帧把候选结果 POST 上来，
// 窗口状态放 Redis（带 TTL），同一会话跨请求累计共识。
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

var ErrNoSession = errors.New("scan session not found or expired")

func scanKey(sid string) string { return fmt.Sprintf("scan:sess:%s", sid) }

func (s *SessionStore) Start(ctx context.Context) (string, error) {
	sid := uuid.NewString()
	b, _ := json.Marshal([]Sample{})
	if err := s.rdb.Set(ctx, scanKey(sid), b, s.ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Observe 喂一帧。接受时删掉会话并返回 (code, true)。
func (s *SessionStore) Observe(ctx context.Context, sid, code string, confidence float64, now time.Time) (string, bool, error) {
	b, err := s.rdb.Get(ctx, scanKey(sid)).Bytes()
	if err == redis.Nil {
		return "", false, ErrNoSession
	}
	if err != nil {
		return "", false, err
	}
	var snap []Sample
	if err := json.Unmarshal(b, &snap); err != nil {
		return "", false, err
	}

	cons := NewConsensus()
	cons.Restore(snap)
	metrics.ScanObservations.Inc()
	accepted, ok := cons.Observe(code, confidence, now)
	if ok {
		metrics.ScanAccepts.Inc()
		_ = s.rdb.Del(ctx, scanKey(sid)).Err()
		return accepted, true, nil
	}

	nb, _ := json.Marshal(cons.Snapshot())
	if err := s.rdb.Set(ctx, scanKey(sid), nb, s.ttl).Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

func (s *SessionStore) Stop(ctx context.Context, sid string) {
	_ = s.rdb.Del(ctx, scanKey(sid)).Err()
}
