package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired is returned when the NATS server URL is missing.
var ErrNATSURLRequired = errors.New("messaging: nats url is required")

const flushTimeout = 5 * time.Second

// NATSConfig configures the NATS backend.
type NATSConfig struct {
	URL     string
	Name    string
	Options []nats.Option
}

// NATS publishes to NATS subjects.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	opts := cfg.Options
	if cfg.Name != "" {
		opts = append([]nats.Option{nats.Name(cfg.Name)}, opts...)
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Publish sends msg to a subject and waits for the server to acknowledge the
// flush or ctx to expire.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	nmsg := nats.NewMsg(destination)
	nmsg.Data = msg.Body
	for _, h := range msg.Headers {
		if h.Key != "" {
			nmsg.Header.Add(h.Key, string(h.Value))
		}
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}

	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("messaging: nats flush: %w", err)
	}

	return nil
}

// Close drains and closes the connection.
func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nil
}
