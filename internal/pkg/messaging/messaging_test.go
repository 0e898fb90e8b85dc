package messaging

import (
	"context"
	"errors"
	"testing"
)

func TestNew_Drivers(t *testing.T) {
	tests := []struct {
		driver  string
		opts    Options
		wantErr error
	}{
		{driver: "", wantErr: nil},
		{driver: "noop", wantErr: nil},
		{driver: "MEMORY", wantErr: nil},
		{driver: "rabbit", wantErr: ErrUnknownDriver},
		{driver: "nats", wantErr: ErrNATSURLRequired},
		{driver: "nsq", wantErr: ErrNSQProducerAddrRequired},
		{driver: "kafka", wantErr: ErrKafkaBrokersRequired},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			p, err := New(tt.driver, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New(%q): got %v want %v", tt.driver, err, tt.wantErr)
			}
			if err == nil {
				_ = p.Close()
			}
		})
	}
}

func TestNew_BuildsLazyClients(t *testing.T) {
	p, err := New(DriverNSQ, Options{NSQ: NSQConfig{ProducerAddr: "127.0.0.1:4150"}})
	if err != nil {
		t.Fatalf("nsq: %v", err)
	}
	_ = p.Close()

	p, err = New(DriverKafka, Options{Kafka: KafkaConfig{Brokers: []string{"127.0.0.1:9092"}}})
	if err != nil {
		t.Fatalf("kafka: %v", err)
	}
	_ = p.Close()
}

func TestMemory_Publish(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Publish(ctx, "", OutgoingMessage{}); !errors.Is(err, ErrDestinationRequired) {
		t.Fatalf("expected ErrDestinationRequired, got %v", err)
	}

	msg := OutgoingMessage{Body: []byte(`{"a":1}`), Headers: []Header{{Key: "cID", Value: []byte("x")}}}
	if err := m.Publish(ctx, "account.registered", msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	sent := m.Sent()
	if len(sent) != 1 || sent[0].Destination != "account.registered" || string(sent[0].Message.Body) != `{"a":1}` {
		t.Fatalf("unexpected sent: %+v", sent)
	}

	_ = m.Close()
	if err := m.Publish(ctx, "x", msg); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNoop_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := (Noop{}).Publish(ctx, "x", OutgoingMessage{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
