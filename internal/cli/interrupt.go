package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// InterruptHandler turns SIGINT and SIGTERM into context cancellation and
// tells the user that unfinished work was rolled back.
type InterruptHandler struct {
	out         io.Writer
	signals     chan os.Signal
	interrupted atomic.Bool
}

// NewInterruptHandler reports interrupts on out, or stderr when out is nil.
func NewInterruptHandler(out io.Writer) *InterruptHandler {
	if out == nil {
		out = os.Stderr
	}
	return &InterruptHandler{out: out, signals: make(chan os.Signal, 1)}
}

// Watch derives a context that is canceled by the first interrupt. Call
// stop when done to unregister the handler.
func (h *InterruptHandler) Watch(parent context.Context) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-h.signals:
			if h.interrupted.CompareAndSwap(false, true) {
				_, _ = io.WriteString(h.out, "\n"+FormatWarning("Interrupted. Unfinished changes were rolled back.")+"\n")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(h.signals)
		cancel()
	}
}

// WasInterrupted reports whether a signal arrived.
func (h *InterruptHandler) WasInterrupted() bool {
	return h.interrupted.Load()
}
