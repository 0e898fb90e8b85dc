// Package messaging publishes domain events to a message broker.
//
// The service only produces events, so the package exposes a Publisher with
// NATS, NSQ and Kafka backends plus in-memory and no-op variants selected by
// driver name.
package messaging
