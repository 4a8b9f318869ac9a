package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"indigo/internal/application"
	"indigo/internal/domain"
)

const (
	maxAudioBody = 10 * 1024 * 1024
	maxTextBody  = 4096
)

// HTTPSource receives captures pushed by remote clients: WAV uploads on
// /audio and typed utterances on /text.
type HTTPSource struct {
	addr        string
	server      *http.Server
	audioChan   chan []byte
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
	authToken   string

	queueMu sync.RWMutex
	closed  bool
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		audioChan:   make(chan []byte, 10),
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute),
		authToken:   authToken,
	}
	h.mux.HandleFunc("POST /audio", h.rateLimiter.Middleware(h.authorize(h.handleAudio)))
	h.mux.HandleFunc("POST /text", h.rateLimiter.Middleware(h.authorize(h.handleText)))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP audio server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.queueMu.Lock()
	if !h.closed {
		h.closed = true
		close(h.audioChan)
	}
	h.queueMu.Unlock()

	h.running = false
	return nil
}

func (h *HTTPSource) NextCommand(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case audio, ok := <-h.audioChan:
		if !ok {
			return nil, application.ErrSourceClosed
		}
		return audio, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

// InjectAudio queues a capture without going through HTTP. It reports false
// when the queue is full or the source has been stopped.
func (h *HTTPSource) InjectAudio(data []byte) bool {
	h.queueMu.RLock()
	defer h.queueMu.RUnlock()

	if h.closed {
		return false
	}

	select {
	case h.audioChan <- data:
		return true
	default:
		return false
	}
}

func (h *HTTPSource) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authToken == "" {
			next(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token != h.authToken {
			h.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (h *HTTPSource) handleAudio(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBody))
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	if !h.InjectAudio(data) {
		http.Error(w, "queue unavailable, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received audio via HTTP", "bytes", len(data))
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "bytes": len(data)})
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxTextBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	// Keep punctuation intact: control phrases are matched exactly.
	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	if !h.InjectAudio([]byte(domain.TextCommandPrefix + text)) {
		http.Error(w, "queue unavailable, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received text command via HTTP", "text", text)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "text": text})
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	queueSize := len(h.audioChan)
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{"status": status, "running": running, "queue_size": queueSize})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
