package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indigo/internal/infra/pushover"
)

func TestClient_Notify(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"token":   r.PostForm.Get("token"),
			"user":    r.PostForm.Get("user"),
			"message": r.PostForm.Get("message"),
			"title":   r.PostForm.Get("title"),
		}
		w.Write([]byte(`{"status":1}`))
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("app-token", "user-key", server.URL)

	require.NoError(t, client.Notify(context.Background(), "It is sunny."))
	assert.Equal(t, map[string]string{
		"token":   "app-token",
		"user":    "user-key",
		"message": "It is sunny.",
		"title":   "Indigo",
	}, gotForm)
}

func TestClient_TruncatesLongMessages(t *testing.T) {
	var gotLen int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotLen = len(r.PostForm.Get("message"))
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("app-token", "user-key", server.URL)

	require.NoError(t, client.Notify(context.Background(), strings.Repeat("a", 5000)))
	assert.Equal(t, 1024, gotLen)
}

func TestClient_TruncatesOnRuneBoundary(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r.PostForm.Get("message")
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("app-token", "user-key", server.URL)

	short := "a" + strings.Repeat("é", 600)
	require.NoError(t, client.Notify(context.Background(), short))
	assert.Equal(t, short, got, "601 characters fit even though they take 1201 bytes")

	require.NoError(t, client.Notify(context.Background(), "a"+strings.Repeat("é", 1100)))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 1024, utf8.RuneCountInString(got))
	assert.Equal(t, "aé", got[:3])
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":0}`, http.StatusBadRequest)
	}))
	defer server.Close()

	err := pushover.NewClientWithURL("app-token", "user-key", server.URL).Notify(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_DisabledWithoutCredentials(t *testing.T) {
	client := pushover.NewClientWithURL("", "", "http://127.0.0.1:1")
	assert.NoError(t, client.Notify(context.Background(), "hi"))
}
