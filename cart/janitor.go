package cart

import (
	"context"
	"log"
	"time"

	"slidelab/metrics"
)

// janitorStore 清扫任务需要的最小面
type janitorStore interface {
	CancelExpiredCartItems(ctx context.Context, now time.Time) (int64, error)
	CountAllActiveCartItems(ctx context.Context, now time.Time) (int64, error)
}

// Janitor 两个周期任务，挂在 App 生命周期上，ctx 取消即停：
//   - 过期清扫（60s）：把 expires_at 已过的 active 行落库置 cancelled，
//     否则这些行只被读取侧过滤、永远留在存储里
//   - 刷新（30s）：重数全局 active 行，更新 gauge；车空时这一轮没事可做
type Janitor struct {
	store        janitorStore
	SweepEvery   time.Duration
	RefreshEvery time.Duration
	now          func() time.Time
}

func NewJanitor(store janitorStore) *Janitor {
	return &Janitor{
		store:        store,
		SweepEvery:   time.Minute,
		RefreshEvery: 30 * time.Second,
		now:          time.Now,
	}
}

func (j *Janitor) Run(ctx context.Context) {
	sweep := time.NewTicker(j.SweepEvery)
	refresh := time.NewTicker(j.RefreshEvery)
	defer sweep.Stop()
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			n, err := j.store.CancelExpiredCartItems(ctx, j.now())
			if err != nil {
				log.Printf("[cart] expiry sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[cart] expired %d cart item(s)", n)
				metrics.CartExpirySweeps.Add(float64(n))
			}
		case <-refresh.C:
			n, err := j.store.CountAllActiveCartItems(ctx, j.now())
			if err != nil {
				log.Printf("[cart] refresh: %v", err)
				continue
			}
			metrics.ActiveCartItems.Set(float64(n))
		}
	}
}
