package application

import (
	"context"
	"errors"
)

// Notifier receives a copy of every reply the assistant speaks.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, message string) error

func (f NotifierFunc) Notify(ctx context.Context, message string) error {
	return f(ctx, message)
}

// MultiNotifier delivers to every notifier in turn, even after a failure.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
