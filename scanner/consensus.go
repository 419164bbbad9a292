// Package scanner turns a stream of noisy per-frame barcode decode attempts
// into one validated code. A single frame read under handheld lighting is
// unreliable; we require repeat agreement inside a short sliding window
// before accepting anything.
package scanner

import (
	"time"

	"slidelab/metrics"
	"slidelab/validate"
)

// 共识参数默认值
const (
	DefaultWindow        = 3 * time.Second // lastSeen 超过这个就逐出
	DefaultRecency       = time.Second     // 接受条件之一：同一码两次观察的最大间隔
	DefaultMinCount      = 2
	DefaultMinConfidence = 50.0 // 0–100，均值必须严格大于
)

// Sample 某个候选串在窗口内的聚合；可序列化（Redis 会话要存）
type Sample struct {
	Code          string    `json:"code"`
	Count         int       `json:"count"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
	AvgConfidence float64   `json:"avgConfidence"`
}

// Consensus 滑动窗口：候选串 → 聚合样本。非并发安全，单个持有者驱动。
type Consensus struct {
	Window        time.Duration
	Recency       time.Duration
	MinCount      int
	MinConfidence float64

	samples map[string]*Sample
}

func NewConsensus() *Consensus {
	return &Consensus{
		Window:        DefaultWindow,
		Recency:       DefaultRecency,
		MinCount:      DefaultMinCount,
		MinConfidence: DefaultMinConfidence,
		samples:       make(map[string]*Sample),
	}
}

// Observe 喂一次帧级解码结果。接受当且仅当同时满足：
// count ≥ MinCount、均值置信度 > MinConfidence、距上一次观察到同一码
// 不超过 Recency（一致的帧必须挨得近）、格式合法（6 位数字）。
// 接受后清空窗口，只发出一次。
func (c *Consensus) Observe(code string, confidence float64, now time.Time) (string, bool) {
	// 先逐出过时条目再记账，否则本帧会把陈旧样本"续命"
	for k, v := range c.samples {
		if now.Sub(v.LastSeen) > c.Window {
			delete(c.samples, k)
			metrics.ScanEvictions.Inc()
		}
	}

	s, ok := c.samples[code]
	if !ok {
		s = &Sample{Code: code, FirstSeen: now}
		c.samples[code] = s
	}
	prevSeen := s.LastSeen // 新样本是零值，count 条件会先挡掉
	s.Count++
	// 增量均值：avg' = (avg*(n-1) + c) / n
	s.AvgConfidence = (s.AvgConfidence*float64(s.Count-1) + confidence) / float64(s.Count)
	s.LastSeen = now

	if s.Count >= c.MinCount &&
		s.AvgConfidence > c.MinConfidence &&
		now.Sub(prevSeen) < c.Recency &&
		validate.Barcode(code).OK {
		c.Reset()
		return code, true
	}
	return "", false
}

func (c *Consensus) Reset() { c.samples = make(map[string]*Sample) }

// Snapshot / Restore 用于把窗口放进外部存储（见 SessionStore）
func (c *Consensus) Snapshot() []Sample {
	out := make([]Sample, 0, len(c.samples))
	for _, s := range c.samples {
		out = append(out, *s)
	}
	return out
}

func (c *Consensus) Restore(samples []Sample) {
	c.samples = make(map[string]*Sample, len(samples))
	for i := range samples {
		s := samples[i]
		c.samples[s.Code] = &s
	}
}
