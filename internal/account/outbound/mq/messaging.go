package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/cybershield/internal/account/usecase"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"github.com/shandysiswandi/cybershield/internal/pkg/messaging"
	"github.com/shandysiswandi/cybershield/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishAccountRegistered(ctx context.Context, msg usecase.AccountRegisteredEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishAccountRegistered")
	defer span.End()

	return m.publish(ctx, span, event.AccountRegisteredDestination, msg.Identifier, event.AccountRegisteredMessage{
		Identifier:   msg.Identifier,
		DisplayName:  msg.DisplayName,
		RegisteredAt: msg.RegisteredAt,
	})
}

func (m *Messaging) PublishSecondFactorEnabled(ctx context.Context, msg usecase.SecondFactorEnabledEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishSecondFactorEnabled")
	defer span.End()

	return m.publish(ctx, span, event.SecondFactorEnabledDestination, msg.Identifier, event.SecondFactorEnabledMessage{
		Identifier: msg.Identifier,
		EnabledAt:  msg.EnabledAt,
	})
}

func (m *Messaging) PublishLoginSucceeded(ctx context.Context, msg usecase.LoginSucceededEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishLoginSucceeded")
	defer span.End()

	return m.publish(ctx, span, event.LoginSucceededDestination, msg.Identifier, event.LoginSucceededMessage{
		Identifier:      msg.Identifier,
		AuthenticatedAt: msg.AuthenticatedAt,
	})
}

// publish keys every message by identifier so a partitioned broker keeps one
// account's events in order.
func (m *Messaging) publish(ctx context.Context, span trace.Span, destination, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(key),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
