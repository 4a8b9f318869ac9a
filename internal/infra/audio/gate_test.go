package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGate() *utteranceGate {
	return newUtteranceGate(testGateConfig())
}

func frameOf(value int16, n int) []int16 {
	frame := make([]int16, n)
	for i := range frame {
		frame[i] = value
	}
	return frame
}

func TestUtteranceGate_InitialSilenceGivesUp(t *testing.T) {
	g := testGate()

	for i := 0; i < 9; i++ {
		require.False(t, g.Feed(frameOf(10, 10)))
	}
	require.True(t, g.Feed(frameOf(-10, 10)))
	assert.Empty(t, g.Samples())
}

func TestUtteranceGate_EndsOnTrailingSilence(t *testing.T) {
	g := testGate()

	require.False(t, g.Feed(frameOf(0, 10)))
	require.False(t, g.Feed(frameOf(2000, 10)))
	require.False(t, g.Feed(frameOf(-2000, 10)))
	require.False(t, g.Feed(frameOf(0, 10)))
	require.False(t, g.Feed(frameOf(0, 10)))
	require.True(t, g.Feed(frameOf(0, 10)))

	assert.Len(t, g.Samples(), 50, "leading silence is dropped")
}

func TestUtteranceGate_MaxDuration(t *testing.T) {
	g := testGate()

	done := false
	frames := 0
	for !done {
		done = g.Feed(frameOf(3000, 10))
		frames++
	}
	assert.Equal(t, 20, frames)
	assert.Len(t, g.Samples(), 200)
}

// scriptedReader copies one scripted frame per Read, or returns its error.
type scriptedReader struct {
	frame []int16
	steps []readStep
	reads int
}

type readStep struct {
	value int16
	err   error
}

func (r *scriptedReader) Read() error {
	if r.reads >= len(r.steps) {
		return errors.New("script exhausted")
	}
	step := r.steps[r.reads]
	r.reads++
	if step.err != nil {
		return step.err
	}
	for i := range r.frame {
		r.frame[i] = step.value
	}
	return nil
}

func testGateConfig() gateConfig {
	return gateConfig{
		SampleRate:      1000,
		Threshold:       500,
		InitialSilence:  100 * time.Millisecond,
		TrailingSilence: 30 * time.Millisecond,
		MaxDuration:     200 * time.Millisecond,
	}
}

func TestCaptureUtterance_OverflowRestartsCapture(t *testing.T) {
	frame := make([]int16, 10)
	reader := &scriptedReader{frame: frame, steps: []readStep{
		{value: 2000},
		{err: errInputOverflowed},
		{value: 0},
		{value: 3000},
		{value: 0},
		{value: 0},
		{value: 0},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	samples, err := captureUtterance(context.Background(), reader, frame, testGateConfig(), logger)

	require.NoError(t, err)
	assert.Equal(t, 7, reader.reads)
	assert.Len(t, samples, 40, "audio from before the overflow is dropped")
	assert.Equal(t, int16(3000), samples[0])
}

func TestCaptureUtterance_ReadError(t *testing.T) {
	frame := make([]int16, 10)
	reader := &scriptedReader{frame: frame, steps: []readStep{{err: errors.New("device unplugged")}}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := captureUtterance(context.Background(), reader, frame, testGateConfig(), logger)
	require.ErrorContains(t, err, "device unplugged")
}

func TestCaptureUtterance_ContextCanceled(t *testing.T) {
	frame := make([]int16, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := captureUtterance(ctx, &scriptedReader{frame: frame}, frame, testGateConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))

	now = now.Add(5 * time.Minute)
	rl.Allow("10.0.0.3")
	assert.Len(t, rl.buckets, 1)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("POST", "/text", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	assert.Equal(t, "192.0.2.7", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}
