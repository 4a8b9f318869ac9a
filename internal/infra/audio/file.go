package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"indigo/internal/domain"
)

// FileSource polls a directory for dropped captures. .wav files are sent to
// speech-to-text, which expects 16-bit PCM WAV from every provider; .txt files
// are treated as already transcribed utterances. Anything else is left alone.
// Every consumed file is renamed with a .processed suffix.
type FileSource struct {
	dir       string
	interval  time.Duration
	processed map[string]bool
	logger    *slog.Logger
	mu        sync.Mutex
}

func NewFileSource(dir string, logger *slog.Logger) *FileSource {
	return &FileSource{
		dir:       dir,
		interval:  500 * time.Millisecond,
		processed: make(map[string]bool),
		logger:    logger,
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextCommand(ctx context.Context) ([]byte, error) {
	if data, err := f.checkForNewFile(); err != nil || data != nil {
		return data, err
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			data, err := f.checkForNewFile()
			if err != nil {
				return nil, err
			}
			if data != nil {
				return data, nil
			}
		}
	}
}

func (f *FileSource) checkForNewFile() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".wav" && ext != ".txt" {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		if err := os.Rename(path, path+".processed"); err != nil {
			f.logger.Warn("marking file processed", "path", path, "error", err)
		}

		if ext == ".txt" {
			text := strings.TrimSpace(string(data))
			if text == "" {
				continue
			}
			return []byte(domain.TextCommandPrefix + text), nil
		}
		return data, nil
	}

	return nil, nil
}
