package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// errInputOverflowed reports that the device dropped input because nobody
// read it in time, e.g. while a reply was being spoken.
var errInputOverflowed = errors.New("input overflowed")

// frameReader fills the capture frame on every Read.
type frameReader interface {
	Read() error
}

// utteranceGate decides where a spoken utterance starts and ends in a stream
// of microphone frames, using a plain amplitude threshold.
type utteranceGate struct {
	threshold     int16
	initialLimit  int
	trailingLimit int
	maxLimit      int

	speaking bool
	waited   int
	silent   int
	samples  []int16
}

type gateConfig struct {
	SampleRate      int
	Threshold       int16
	InitialSilence  time.Duration
	TrailingSilence time.Duration
	MaxDuration     time.Duration
}

func defaultGateConfig(sampleRate int) gateConfig {
	return gateConfig{
		SampleRate:      sampleRate,
		Threshold:       500,
		InitialSilence:  5 * time.Second,
		TrailingSilence: time.Second,
		MaxDuration:     15 * time.Second,
	}
}

func newUtteranceGate(cfg gateConfig) *utteranceGate {
	toSamples := func(d time.Duration) int {
		return int(d.Seconds() * float64(cfg.SampleRate))
	}
	return &utteranceGate{
		threshold:     cfg.Threshold,
		initialLimit:  toSamples(cfg.InitialSilence),
		trailingLimit: toSamples(cfg.TrailingSilence),
		maxLimit:      toSamples(cfg.MaxDuration),
		samples:       make([]int16, 0, cfg.SampleRate*5),
	}
}

// Feed consumes one frame and reports whether the capture is complete.
// The frame is copied.
func (g *utteranceGate) Feed(frame []int16) bool {
	loud := g.isLoud(frame)

	if !g.speaking {
		if !loud {
			g.waited += len(frame)
			return g.waited >= g.initialLimit
		}
		g.speaking = true
	}

	g.samples = append(g.samples, frame...)
	if loud {
		g.silent = 0
	} else {
		g.silent += len(frame)
	}

	return g.silent >= g.trailingLimit || len(g.samples) >= g.maxLimit
}

// Samples is empty when no speech started before the initial silence ran out.
func (g *utteranceGate) Samples() []int16 {
	return g.samples
}

func (g *utteranceGate) isLoud(frame []int16) bool {
	for _, sample := range frame {
		if sample > g.threshold || sample < -g.threshold {
			return true
		}
	}
	return false
}

// captureUtterance reads frames until the gate closes and returns the gated
// samples. An overflow discards whatever was captured so far and starts over,
// since the buffered audio predates the current turn.
func captureUtterance(ctx context.Context, r frameReader, frame []int16, cfg gateConfig, logger *slog.Logger) ([]int16, error) {
	gate := newUtteranceGate(cfg)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := r.Read(); err != nil {
			if errors.Is(err, errInputOverflowed) {
				logger.Debug("input overflowed, restarting capture")
				gate = newUtteranceGate(cfg)
				continue
			}
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		if gate.Feed(frame) {
			return gate.Samples(), nil
		}
	}
}
