package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indigo/internal/application"
	"indigo/internal/domain"
)

type mockAudioSource struct {
	commands [][]byte
	errs     []error
	index    int
	started  bool
	stopped  bool
}

func (m *mockAudioSource) Start(_ context.Context) error { m.started = true; return nil }
func (m *mockAudioSource) Stop() error                   { m.stopped = true; return nil }
func (m *mockAudioSource) Name() string                  { return "mock" }

func (m *mockAudioSource) NextCommand(_ context.Context) ([]byte, error) {
	if m.index >= len(m.commands) {
		return nil, context.Canceled
	}
	i := m.index
	m.index++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return m.commands[i], err
}

type mockSTT struct {
	transcriptions map[string]domain.Utterance
	err            error
	calls          int
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (domain.Utterance, error) {
	m.calls++
	if m.err != nil {
		return domain.Utterance{}, m.err
	}
	if u, ok := m.transcriptions[string(audio)]; ok {
		return u, nil
	}
	return domain.NoMatch(""), nil
}

func TestAudioRecognizer_Transcribes(t *testing.T) {
	source := &mockAudioSource{commands: [][]byte{[]byte("wav-stop")}}
	stt := &mockSTT{transcriptions: map[string]domain.Utterance{
		"wav-stop": domain.Recognized("Stop."),
	}}

	recognizer := application.NewAudioRecognizer(source, stt, discardLogger())
	require.NoError(t, recognizer.Start(context.Background()))
	defer recognizer.Stop()

	u, err := recognizer.RecognizeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Recognized("Stop."), u)
	assert.True(t, source.started)
}

func TestAudioRecognizer_TextCommandBypassesSTT(t *testing.T) {
	source := &mockAudioSource{commands: [][]byte{[]byte(domain.TextCommandPrefix + "Hey, Indigo.")}}
	stt := &mockSTT{}

	recognizer := application.NewAudioRecognizer(source, stt, discardLogger())

	u, err := recognizer.RecognizeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Recognized("Hey, Indigo."), u)
	assert.Zero(t, stt.calls, "STT should not be called for text commands")
}

func TestAudioRecognizer_EmptyCaptureIsNoMatch(t *testing.T) {
	source := &mockAudioSource{commands: [][]byte{nil}}
	stt := &mockSTT{}

	u, err := application.NewAudioRecognizer(source, stt, discardLogger()).RecognizeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoMatch, u.Outcome)
	assert.Zero(t, stt.calls)
}

func TestAudioRecognizer_FailuresBecomeCancellations(t *testing.T) {
	tests := []struct {
		name        string
		source      *mockAudioSource
		stt         *mockSTT
		wantReason  domain.CancellationReason
		wantDetails string
	}{
		{
			name:        "source error",
			source:      &mockAudioSource{commands: [][]byte{nil}, errs: []error{errors.New("reading from stream: device lost")}},
			stt:         &mockSTT{},
			wantReason:  domain.CancellationError,
			wantDetails: "getting audio: reading from stream: device lost",
		},
		{
			name:       "source closed",
			source:     &mockAudioSource{commands: [][]byte{nil}, errs: []error{fmt.Errorf("http: %w", application.ErrSourceClosed)}},
			stt:        &mockSTT{},
			wantReason: domain.CancellationEndOfStream,
		},
		{
			name:        "stt error",
			source:      &mockAudioSource{commands: [][]byte{[]byte("wav")}},
			stt:         &mockSTT{err: errors.New("connection reset")},
			wantReason:  domain.CancellationError,
			wantDetails: "transcribing: connection reset",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := application.NewAudioRecognizer(tc.source, tc.stt, discardLogger()).RecognizeOnce(context.Background())
			require.NoError(t, err)
			require.Equal(t, domain.OutcomeCanceled, u.Outcome)
			assert.Equal(t, tc.wantReason, u.Cancellation.Reason)
			assert.Equal(t, tc.wantDetails, u.Cancellation.ErrorDetails)
		})
	}
}

func TestAudioRecognizer_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &mockAudioSource{}
	_, err := application.NewAudioRecognizer(source, &mockSTT{}, discardLogger()).RecognizeOnce(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNoopSTT(t *testing.T) {
	u, err := (&application.NoopSTT{}).Transcribe(context.Background(), []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCanceled, u.Outcome)
	assert.Contains(t, u.Cancellation.ErrorDetails, "3 bytes")
}
