//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

type MicrophoneSource struct {
	sampleRate int
	logger     *slog.Logger

	mu     sync.Mutex
	stream *portaudio.Stream
	frame  []int16
}

func NewMicrophoneSource(sampleRate int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate: sampleRate,
		logger:     logger,
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	m.frame = make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.frame), m.frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.logger.Info("microphone started", "sampleRate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil
	}
	m.stream.Stop()
	m.stream.Close()
	m.stream = nil
	return portaudio.Terminate()
}

// NextCommand blocks until one utterance has been captured. It returns an
// empty payload when nobody spoke within the initial silence window.
func (m *MicrophoneSource) NextCommand(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil, fmt.Errorf("microphone not started")
	}

	samples, err := captureUtterance(ctx, streamReader{m.stream}, m.frame, defaultGateConfig(m.sampleRate), m.logger)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}

	m.logger.Debug("captured utterance", "samples", len(samples))
	return EncodeWAV(samples, m.sampleRate), nil
}

type streamReader struct {
	stream *portaudio.Stream
}

func (r streamReader) Read() error {
	err := r.stream.Read()
	if errors.Is(err, portaudio.InputOverflowed) {
		return errInputOverflowed
	}
	return err
}
