package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestManager_RunsAndCollectsErrors(t *testing.T) {
	m := NewManager(4)
	boom := errors.New("boom")

	var ran atomic.Int32
	for range 3 {
		if err := m.Go(context.Background(), "count", func(context.Context) error {
			ran.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Go: %v", err)
		}
	}
	_ = m.Go(context.Background(), "fail", func(context.Context) error { return boom })

	if err := m.Wait(); !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
	if ran.Load() != 3 {
		t.Fatalf("ran: got %d want 3", ran.Load())
	}
}

func TestManager_DetachesCancellation(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ctxErr error
	_ = m.Go(ctx, "detached", func(ctx context.Context) error {
		ctxErr = ctx.Err()
		return nil
	})
	_ = m.Wait()

	if ctxErr != nil {
		t.Fatalf("task context should not inherit cancellation, got %v", ctxErr)
	}
}

func TestManager_LimitAndClose(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	_ = m.Go(context.Background(), "block", func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	if err := m.Go(context.Background(), "extra", func(context.Context) error { return nil }); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	close(release)
	_ = m.Wait()

	if err := m.Go(context.Background(), "late", func(context.Context) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)

	_ = m.Go(context.Background(), "panic", func(context.Context) error { panic("kaboom") })

	if err := m.Wait(); err != nil {
		t.Fatalf("panic should not surface as error, got %v", err)
	}
}
