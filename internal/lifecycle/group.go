package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/window-exporter/internal/infrastructure/logging"
)

// ErrShutdownTimeout is returned by Shutdown when the grace period elapses
// before every cleanup action has returned.
var ErrShutdownTimeout = errors.New("lifecycle: shutdown grace period exceeded")

// CleanupFunc releases one component. The context expires with the grace
// period.
type CleanupFunc func(ctx context.Context) error

type cleanup struct {
	name string
	fn   CleanupFunc
}

// Group collects one cleanup action per component and runs them together.
// The zero value is ready to use.
type Group struct {
	mu      sync.Mutex
	actions []cleanup
	logger  *logging.Logger
}

// SetLogger enables per-action completion logging.
func (g *Group) SetLogger(logger *logging.Logger) {
	g.mu.Lock()
	g.logger = logger
	g.mu.Unlock()
}

// Add registers a cleanup action. Each name may be registered once.
func (g *Group) Add(name string, fn CleanupFunc) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if slices.ContainsFunc(g.actions, func(c cleanup) bool { return c.name == name }) {
		return fmt.Errorf("lifecycle: cleanup %q already registered", name)
	}
	g.actions = append(g.actions, cleanup{name: name, fn: fn})
	return nil
}

// Shutdown runs every cleanup action concurrently and waits for all of them,
// at most for grace. It returns the first action error, or
// ErrShutdownTimeout naming the actions still running when time ran out.
func (g *Group) Shutdown(grace time.Duration) error {
	g.mu.Lock()
	actions := slices.Clone(g.actions)
	logger := g.logger
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	var pendingMu sync.Mutex
	pending := make(map[string]bool, len(actions))
	for _, a := range actions {
		pending[a.name] = true
	}

	var eg errgroup.Group
	for _, a := range actions {
		eg.Go(func() error {
			start := time.Now()
			err := a.fn(ctx)

			pendingMu.Lock()
			delete(pending, a.name)
			pendingMu.Unlock()

			if logger != nil {
				if err != nil {
					logger.Error("cleanup failed", "component", a.name, "error", err)
				} else {
					logger.Info("cleanup complete", "component", a.name,
						"duration_ms", time.Since(start).Milliseconds())
				}
			}
			if err != nil {
				return fmt.Errorf("%s: %w", a.name, err)
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			return err
		default:
		}

		pendingMu.Lock()
		names := make([]string, 0, len(pending))
		for name := range pending {
			names = append(names, name)
		}
		pendingMu.Unlock()
		sort.Strings(names)
		return fmt.Errorf("%w: still running: %v", ErrShutdownTimeout, names)
	}
}
