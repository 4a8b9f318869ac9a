package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"indigo/internal/application"
	"indigo/internal/domain"
)

type mockSynthesizer struct {
	audio []byte
	err   error
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return m.audio, m.err
}

type mockSink struct {
	played [][]byte
	err    error
}

func (m *mockSink) Play(_ context.Context, wav []byte) error {
	m.played = append(m.played, wav)
	return m.err
}

func (m *mockSink) Name() string { return "mock" }

func TestSpeechOutput_Speak(t *testing.T) {
	sink := &mockSink{}
	out := application.NewSpeechOutput(&mockSynthesizer{audio: []byte("RIFF")}, sink, discardLogger())

	result := out.Speak(context.Background(), "hello")

	assert.Equal(t, domain.SynthesisCompleted, result.Outcome)
	assert.Equal(t, "hello", result.Text)
	assert.Equal(t, [][]byte{[]byte("RIFF")}, sink.played)
}

func TestSpeechOutput_SynthesisError(t *testing.T) {
	sink := &mockSink{}
	out := application.NewSpeechOutput(&mockSynthesizer{err: errors.New("tts API error 400")}, sink, discardLogger())

	result := out.Speak(context.Background(), "hello")

	assert.Equal(t, domain.SynthesisCanceled, result.Outcome)
	assert.Equal(t, domain.CancellationError, result.Cancellation.Reason)
	assert.Equal(t, "tts API error 400", result.Cancellation.ErrorDetails)
	assert.Empty(t, sink.played)
}

func TestSpeechOutput_ContextCanceled(t *testing.T) {
	out := application.NewSpeechOutput(&mockSynthesizer{err: context.Canceled}, &mockSink{}, discardLogger())

	result := out.Speak(context.Background(), "hello")

	assert.Equal(t, domain.SynthesisCanceled, result.Outcome)
	assert.Equal(t, domain.CancellationCancelledByUser, result.Cancellation.Reason)
}

func TestSpeechOutput_PlaybackError(t *testing.T) {
	out := application.NewSpeechOutput(&mockSynthesizer{audio: []byte("RIFF")}, &mockSink{err: errors.New("no output device")}, discardLogger())

	result := out.Speak(context.Background(), "hello")

	assert.Equal(t, domain.SynthesisCanceled, result.Outcome)
	assert.Equal(t, "no output device", result.Cancellation.ErrorDetails)
}
