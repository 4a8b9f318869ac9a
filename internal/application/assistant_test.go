package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indigo/internal/application"
	"indigo/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockCompleter struct {
	reply     string
	err       error
	prompts   []string
	maxTokens []int
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.maxTokens = append(m.maxTokens, maxTokens)
	return m.reply, m.err
}

type mockSpeaker struct {
	spoken []string
	result func(text string) domain.SynthesisResult
}

func (m *mockSpeaker) Speak(_ context.Context, text string) domain.SynthesisResult {
	m.spoken = append(m.spoken, text)
	if m.result != nil {
		return m.result(text)
	}
	return domain.SynthesisDone(text)
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	return r.err
}

func TestAssistant_AskAndSpeak(t *testing.T) {
	completer := &mockCompleter{reply: "\n\n  It is sunny in London.  \n"}
	speaker := &mockSpeaker{}
	notifier := &recordingNotifier{}

	assistant := application.NewAssistant(completer, speaker, notifier, discardLogger())

	err := assistant.AskAndSpeak(context.Background(), "What's the weather?")
	require.NoError(t, err)

	assert.Equal(t, []string{"What's the weather?"}, completer.prompts)
	assert.Equal(t, []int{application.DefaultMaxTokens}, completer.maxTokens)
	assert.Equal(t, []string{"It is sunny in London."}, speaker.spoken)
	assert.Equal(t, []string{"It is sunny in London."}, notifier.messages)
}

func TestAssistant_CompletionErrorSkipsSpeech(t *testing.T) {
	completer := &mockCompleter{err: errors.New("401 unauthorized")}
	speaker := &mockSpeaker{}

	assistant := application.NewAssistant(completer, speaker, nil, discardLogger())

	err := assistant.AskAndSpeak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401 unauthorized")
	assert.Empty(t, speaker.spoken)
}

func TestAssistant_EmptyCompletion(t *testing.T) {
	assistant := application.NewAssistant(&mockCompleter{reply: "   "}, &mockSpeaker{}, nil, discardLogger())

	err := assistant.AskAndSpeak(context.Background(), "hello")
	require.EqualError(t, err, "empty completion")
}

func TestAssistant_SynthesisCancellationIsNotAnError(t *testing.T) {
	speaker := &mockSpeaker{
		result: func(text string) domain.SynthesisResult {
			return domain.SynthesisAborted(text, domain.CancellationError, "bad voice")
		},
	}
	notified := 0
	notifier := application.NotifierFunc(func(context.Context, string) error {
		notified++
		return errors.New("pushover down")
	})

	assistant := application.NewAssistant(&mockCompleter{reply: "hi"}, speaker, notifier, discardLogger())

	require.NoError(t, assistant.AskAndSpeak(context.Background(), "hello"))
	assert.Equal(t, []string{"hi"}, speaker.spoken)
	assert.Equal(t, 1, notified)
}

func TestAssistant_WithMaxTokens(t *testing.T) {
	completer := &mockCompleter{reply: "ok"}
	assistant := application.NewAssistant(completer, &mockSpeaker{}, nil, discardLogger()).WithMaxTokens(42)

	require.NoError(t, assistant.AskAndSpeak(context.Background(), "hello"))
	assert.Equal(t, []int{42}, completer.maxTokens)

	assistant.WithMaxTokens(0)
	require.NoError(t, assistant.AskAndSpeak(context.Background(), "hello"))
	assert.Equal(t, []int{42, 42}, completer.maxTokens)
}
