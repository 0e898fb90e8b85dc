// Package store persists account credentials. Every backend offers the same
// contract: Create is insert-if-absent, Get is an unlocked read and Update is
// an atomic read-modify-write scoped to one identifier: the mutate function
// changes the credential in place, and an error from it aborts the update
// with nothing written and reaches the caller unchanged.
package store

import (
	"context"
	"errors"

	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// ErrUnknownDriver is returned for an unsupported store.driver value.
var ErrUnknownDriver = errors.New("store: unknown driver")

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("account.outbound.store").Start(ctx, name)
}
