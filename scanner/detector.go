package scanner

import (
	"context"
	"errors"
	"time"

	"slidelab/metrics"
)

// Candidate 单帧解码结果；Confidence 0–100
type Candidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Decoder 注入的解码能力。解不出返回 nil，这是稳态不是错误。
type Decoder interface {
	Detect(frame []byte) *Candidate
}

// FrameSource 相机流。Acquire 独占：实现方应先拆掉之前的流再建新流，
// 任意时刻只有一个活动会话。失败用 *CapabilityError 区分权限/无设备等。
type FrameSource interface {
	Acquire(ctx context.Context) error
	Frames() <-chan []byte
	Release()
}

// ErrStreamEnded 帧通道被提前关闭（相机被拔走等）
var ErrStreamEnded = errors.New("frame stream ended before a code was accepted")

// Detector 驱动 FrameSource + Decoder + Consensus。共识本身永不失败，
// 只是可能一直不接受；要放弃就给 ctx 挂截止时间。
type Detector struct {
	src  FrameSource
	dec  Decoder
	cons *Consensus
	now  func() time.Time
}

func NewDetector(src FrameSource, dec Decoder) *Detector {
	return &Detector{src: src, dec: dec, cons: NewConsensus(), now: time.Now}
}

// Run 跑到接受一个码或 ctx 结束。接受后停掉帧源，只返回一次。
func (d *Detector) Run(ctx context.Context) (string, error) {
	if d.dec == nil {
		return "", &CapabilityError{Kind: KindEngineMissing, Hint: "no decoder configured, reload the scanner"}
	}
	if err := d.src.Acquire(ctx); err != nil {
		var ce *CapabilityError
		if errors.As(err, &ce) {
			return "", err
		}
		return "", &CapabilityError{Kind: KindNoDevice, Hint: err.Error()}
	}
	defer d.src.Release()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case frame, ok := <-d.src.Frames():
			if !ok {
				return "", ErrStreamEnded
			}
			cand := d.dec.Detect(frame)
			if cand == nil {
				continue // 单帧没解出来，继续等下一帧
			}
			metrics.ScanObservations.Inc()
			if code, accepted := d.cons.Observe(cand.Text, cand.Confidence, d.now()); accepted {
				metrics.ScanAccepts.Inc()
				return code, nil
			}
		}
	}
}
