package audio

import (
	"context"
	"log/slog"
	"time"
)

// DiscardSink accepts audio without playing it, for headless runs.
type DiscardSink struct {
	logger *slog.Logger
}

func NewDiscardSink(logger *slog.Logger) *DiscardSink {
	return &DiscardSink{logger: logger}
}

func (d *DiscardSink) Name() string {
	return "none"
}

func (d *DiscardSink) Play(_ context.Context, wav []byte) error {
	pcm, err := DecodeWAV(wav)
	if err != nil {
		return err
	}

	var duration time.Duration
	if pcm.SampleRate > 0 && pcm.Channels > 0 {
		duration = time.Duration(len(pcm.Samples)/pcm.Channels) * time.Second / time.Duration(pcm.SampleRate)
	}
	d.logger.Info("discarding synthesized audio", "duration", duration)
	return nil
}
