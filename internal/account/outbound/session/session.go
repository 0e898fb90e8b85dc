// Package session keeps short-lived login sessions: proof that a password
// was verified and which second-factor step must follow.
package session

import (
	"context"
	"errors"

	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// ErrUnknownDriver is returned for an unsupported session.driver value.
var ErrUnknownDriver = errors.New("session: unknown driver")

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("account.outbound.session").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
