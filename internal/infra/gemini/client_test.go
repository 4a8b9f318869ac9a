package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indigo/internal/infra/gemini"
)

func TestClient_Complete(t *testing.T) {
	var gotKey string
	var got struct {
		GenerationConfig struct {
			MaxOutputTokens int `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Sunny all day."}]}}]}`))
	}))
	defer server.Close()

	client := gemini.NewClientWithURL("test-key", "gemini-test", server.URL)

	text, err := client.Complete(context.Background(), "What's the weather?", 100)
	require.NoError(t, err)

	assert.Equal(t, "Sunny all day.", text)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, 100, got.GenerationConfig.MaxOutputTokens)
}

func TestClient_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := gemini.NewClientWithURL("test-key", "", server.URL).Complete(context.Background(), "hi", 100)
	require.EqualError(t, err, "empty response from gemini")
}

func TestClient_ErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"quota exceeded","code":429}}`))
	}))
	defer server.Close()

	_, err := gemini.NewClientWithURL("test-key", "", server.URL).Complete(context.Background(), "hi", 100)
	require.EqualError(t, err, "gemini error: quota exceeded")
}
