package application

import "context"

// AudioSource yields captured commands. A payload may instead carry
// domain.TextCommandPrefix followed by already transcribed text.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) ([]byte, error)
	Name() string
}

// AudioSink plays a WAV payload on some output device.
type AudioSink interface {
	Play(ctx context.Context, wav []byte) error
	Name() string
}
