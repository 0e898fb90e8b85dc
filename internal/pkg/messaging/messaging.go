package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	// DriverNoop discards every message.
	DriverNoop = "noop"
	// DriverMemory keeps messages in process memory.
	DriverMemory = "memory"
	// DriverNATS selects the NATS backend.
	DriverNATS = "nats"
	// DriverNSQ selects the NSQ backend.
	DriverNSQ = "nsq"
	// DriverKafka selects the Kafka backend.
	DriverKafka = "kafka"
)

var (
	// ErrUnknownDriver indicates an unsupported messaging driver.
	ErrUnknownDriver = errors.New("messaging: unknown driver")
	// ErrDestinationRequired is returned when the topic or subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("messaging: publisher closed")
)

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	io.Closer
	Publish(ctx context.Context, destination string, msg OutgoingMessage) error
}

// OutgoingMessage is a broker-agnostic message.
type OutgoingMessage struct {
	Body []byte
	// Key is used by Kafka for partitioning.
	Key []byte
	// Headers are dropped by brokers without header support (NSQ).
	Headers []Header
}

// Header is a key/value pair attached to a message.
type Header struct {
	Key   string
	Value []byte
}

// Options groups config for the supported backends.
type Options struct {
	NATS  NATSConfig
	NSQ   NSQConfig
	Kafka KafkaConfig
}

// New constructs a Publisher by driver name. An empty driver means noop.
func New(driver string, opts Options) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverNoop:
		return Noop{}, nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverKafka:
		return NewKafka(opts.Kafka)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// Noop discards messages.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(ctx context.Context, _ string, _ OutgoingMessage) error {
	return ctx.Err()
}

// Close implements io.Closer.
func (Noop) Close() error { return nil }

// Envelope is a message captured by Memory.
type Envelope struct {
	Destination string
	Message     OutgoingMessage
}

// Memory records published messages. It is meant for local runs and tests.
type Memory struct {
	mu     sync.Mutex
	sent   []Envelope
	closed bool
}

// NewMemory returns an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish implements Publisher.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.sent = append(m.sent, Envelope{Destination: destination, Message: msg})
	return nil
}

// Sent returns a copy of the recorded messages in publish order.
func (m *Memory) Sent() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Envelope(nil), m.sent...)
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
