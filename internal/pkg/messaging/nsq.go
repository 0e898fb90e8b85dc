package messaging

import (
	"context"
	"errors"
	"fmt"

	nsq "github.com/nsqio/go-nsq"
)

// ErrNSQProducerAddrRequired is returned when the nsqd address is missing.
var ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")

// NSQConfig configures the NSQ backend.
type NSQConfig struct {
	ProducerAddr string
	Config       *nsq.Config
}

// NSQ publishes to NSQ topics. NSQ has no message headers, so
// OutgoingMessage.Headers are not transmitted.
type NSQ struct {
	producer *nsq.Producer
}

// NewNSQ constructs an NSQ producer. The connection is established lazily on
// first publish.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQProducerAddrRequired
	}

	ncfg := cfg.Config
	if ncfg == nil {
		ncfg = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, ncfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{producer: p}, nil
}

// Publish sends msg to a topic. The producer call itself is synchronous, so
// ctx is only checked before sending.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}

	if err := n.producer.Publish(destination, msg.Body); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}
	return nil
}

// Close stops the producer.
func (n *NSQ) Close() error {
	n.producer.Stop()
	return nil
}
