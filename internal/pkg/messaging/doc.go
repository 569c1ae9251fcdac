// Package messaging publishes and consumes broker messages behind one
// interface, with drivers for Kafka, NATS, NSQ, Google Pub/Sub and an
// in-process bus for local development.
//
// Consumers ack a message when the handler returns nil and ask the broker to
// redeliver it (where the broker supports that) when the handler fails.
package messaging
