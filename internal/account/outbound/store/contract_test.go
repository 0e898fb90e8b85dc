package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

type credentialStore interface {
	Get(ctx context.Context, id string) (*entity.Credential, error)
	Create(ctx context.Context, c entity.Credential) error
	Update(ctx context.Context, id string, fn func(c *entity.Credential) error) error
}

var errAbort = errors.New("abort")

func newCredential(id string) entity.Credential {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return entity.Credential{
		Identifier:   id,
		DisplayName:  "Al",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// runContract exercises the behavior every backend must share.
func runContract(t *testing.T, s credentialStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("CreateThenGet", func(t *testing.T) {
		// Arrange
		c := newCredential("get@x.com")

		// Act
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := s.Get(ctx, c.Identifier)

		// Assert
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.DisplayName != "Al" || got.PasswordHash != c.PasswordHash || got.SecondFactorEnabled {
			t.Fatalf("unexpected record: %+v", got)
		}
		if !got.CreatedAt.Equal(c.CreatedAt) {
			t.Fatalf("created_at: got %v want %v", got.CreatedAt, c.CreatedAt)
		}
	})

	t.Run("CreateDuplicateConflicts", func(t *testing.T) {
		c := newCredential("dup@x.com")
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}

		c.DisplayName = "Other"
		if err := s.Create(ctx, c); !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}

		got, _ := s.Get(ctx, c.Identifier)
		if got.DisplayName != "Al" {
			t.Fatalf("duplicate create overwrote record: %+v", got)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		if _, err := s.Get(ctx, "missing@x.com"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := s.Update(ctx, "missing@x.com", func(*entity.Credential) error { return nil })
		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdatePersists", func(t *testing.T) {
		c := newCredential("update@x.com")
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}

		err := s.Update(ctx, c.Identifier, func(rec *entity.Credential) error {
			rec.SecondFactorSecret = []byte{1, 2, 3}
			rec.SecondFactorEnabled = true
			rec.LastUsedStep = 42
			return nil
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, err := s.Get(ctx, c.Identifier)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.SecondFactorEnabled || got.LastUsedStep != 42 || string(got.SecondFactorSecret) != "\x01\x02\x03" {
			t.Fatalf("update not persisted: %+v", got)
		}
	})

	t.Run("UpdateAbortLeavesRecordUnchanged", func(t *testing.T) {
		c := newCredential("abort@x.com")
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}

		err := s.Update(ctx, c.Identifier, func(rec *entity.Credential) error {
			rec.SecondFactorEnabled = true
			return errAbort
		})
		if !errors.Is(err, errAbort) {
			t.Fatalf("expected mutate error to pass through, got %v", err)
		}

		got, _ := s.Get(ctx, c.Identifier)
		if got.SecondFactorEnabled {
			t.Fatalf("aborted update was written")
		}
	})

	t.Run("ConcurrentUpdatesAreSerialized", func(t *testing.T) {
		c := newCredential("race@x.com")
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Go(func() {
				errs <- s.Update(ctx, c.Identifier, func(rec *entity.Credential) error {
					rec.LastUsedStep++
					return nil
				})
			})
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
		}

		got, _ := s.Get(ctx, c.Identifier)
		if got.LastUsedStep != workers {
			t.Fatalf("lost updates: got %d want %d", got.LastUsedStep, workers)
		}
	})
}
