package llm

import (
	"context"
	"errors"
)

// Handle is an in-flight summarization. Wait blocks for the result; Cancel aborts it.
// A cancelled handle resolves to ("", nil).
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	text   string
	err    error
}

// Start runs fn on its own goroutine under a cancellable child of parent.
func Start(parent context.Context, fn func(ctx context.Context) (string, error)) *Handle {
	ctx, cancel := context.WithCancel(parent)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		text, err := fn(ctx)
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
			text, err = "", nil
		}
		h.text, h.err = text, err
		cancel()
	}()
	return h
}

// Wait blocks until the generation finishes or is cancelled.
func (h *Handle) Wait() (string, error) {
	<-h.done
	return h.text, h.err
}

// Done is closed once the result is available.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) Cancel() {
	h.cancel()
}
