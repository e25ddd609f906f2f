package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
)

// SignalError is the cancellation cause recorded when a signal arrives.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received signal %s", e.Signal)
}

// NotifyContext returns a copy of parent that is cancelled on the first of
// signals. The cause, available through context.Cause or SignalFromContext,
// names the signal.
//
// After the first signal the handler is unregistered, so a second signal gets
// the default behaviour and terminates the process even if shutdown hangs.
// The returned stop function releases resources; it is safe to call more than
// once.
func NotifyContext(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	ctx, stop := watch(parent, ch, func() { signal.Stop(ch) })
	return ctx, stop
}

// watch cancels the returned context when ch delivers a signal.
func watch(parent context.Context, ch <-chan os.Signal, unregister func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	var once sync.Once
	release := func() { once.Do(unregister) }

	go func() {
		select {
		case sig := <-ch:
			release()
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		release()
		cancel(context.Canceled)
	}
}

// SignalFromContext returns the signal that cancelled ctx, if any.
func SignalFromContext(ctx context.Context) (os.Signal, bool) {
	var sigErr *SignalError
	if errors.As(context.Cause(ctx), &sigErr) {
		return sigErr.Signal, true
	}
	return nil, false
}
