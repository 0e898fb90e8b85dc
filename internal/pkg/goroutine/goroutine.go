// Package goroutine runs fire-and-forget background work with a concurrency
// cap, panic recovery and a drain step for graceful shutdown.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/cybershield/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a
// non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrLimitReached is returned by Go when every slot is taken.
var ErrLimitReached = errors.New("goroutine: limit reached")

// ErrClosed is returned by Go after Wait has been called.
var ErrClosed = errors.New("goroutine: manager closed")

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// Tasks outlive the request that scheduled them: they receive a context that
// keeps the parent's values (trace span, correlation id) but not its
// cancellation.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f. It never blocks: when the manager is full or closed the task
// is dropped, logged and the reason returned.
func (g *Manager) Go(pCtx context.Context, name string, f func(ctx context.Context) error) error {
	if g == nil {
		return ErrClosed
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(pCtx, "goroutine manager is closed, task dropped", "task", name)
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(pCtx, "goroutine limit reached, task dropped", "task", name)
		return ErrLimitReached
	}

	ctx := context.WithoutCancel(pCtx)
	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic in background task", "task", name, "panic", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic in background task", "task", name, "panic", rvr, "stack", string(stack))
				}
			}
		}()

		if err := f(ctx); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	})

	return nil
}

// Wait stops accepting tasks, blocks until running ones finish and returns
// their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
