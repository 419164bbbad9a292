package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptSource struct {
	frames     chan []byte
	acquireErr error
	released   bool
}

func (s *scriptSource) Acquire(ctx context.Context) error { return s.acquireErr }
func (s *scriptSource) Frames() <-chan []byte             { return s.frames }
func (s *scriptSource) Release()                          { s.released = true }

// 帧内容直接当候选文本；"noise" 解不出
type scriptDecoder struct{}

func (scriptDecoder) Detect(frame []byte) *Candidate {
	if string(frame) == "noise" {
		return nil
	}
	return &Candidate{Text: string(frame), Confidence: 80}
}

func TestDetectorAcceptsAfterAgreement(t *testing.T) {
	src := &scriptSource{frames: make(chan []byte, 8)}
	src.frames <- []byte("noise")
	src.frames <- []byte("654321")
	src.frames <- []byte("noise")
	src.frames <- []byte("654321")

	d := NewDetector(src, scriptDecoder{})
	code, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "654321", code)
	assert.True(t, src.released, "frame source must be released after acceptance")
}

func TestDetectorCapabilityErrorOnAcquire(t *testing.T) {
	src := &scriptSource{
		frames:     make(chan []byte),
		acquireErr: &CapabilityError{Kind: KindPermissionDenied, Hint: "grant camera permission"},
	}
	d := NewDetector(src, scriptDecoder{})
	_, err := d.Run(context.Background())

	var ce *CapabilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindPermissionDenied, ce.Kind)
	assert.False(t, src.released, "never acquired, nothing to release")
}

func TestDetectorWrapsPlainAcquireError(t *testing.T) {
	src := &scriptSource{frames: make(chan []byte), acquireErr: errors.New("device busy")}
	d := NewDetector(src, scriptDecoder{})
	_, err := d.Run(context.Background())

	var ce *CapabilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindNoDevice, ce.Kind)
}

func TestDetectorMissingDecoder(t *testing.T) {
	src := &scriptSource{frames: make(chan []byte)}
	d := NewDetector(src, nil)
	_, err := d.Run(context.Background())

	var ce *CapabilityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindEngineMissing, ce.Kind)
}

func TestDetectorStopsOnContextDeadline(t *testing.T) {
	// 共识永远凑不齐（只有噪声帧），放弃超时由调用方的 ctx 提供
	src := &scriptSource{frames: make(chan []byte, 1)}
	src.frames <- []byte("noise")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	d := NewDetector(src, scriptDecoder{})
	_, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, src.released)
}

func TestDetectorStreamEnded(t *testing.T) {
	src := &scriptSource{frames: make(chan []byte)}
	close(src.frames)

	d := NewDetector(src, scriptDecoder{})
	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, ErrStreamEnded)
}
