// Package nats publishes samples to a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/bft-labs/pulseship/internal/ports"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "pulseship.gsr"

// publisher is the subset of *nats.Conn the sink uses.
type publisher interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// Sink implements ports.Sink on a NATS connection. Publish is buffered by
// the client, so Push does not wait for the server.
type Sink struct {
	conn    publisher
	subject string
	info    ports.StreamInfo
	logger  ports.Logger
}

// Dial connects to url and returns a sink publishing on subject. token, when
// set, authenticates the connection.
func Dial(url, subject, token string, info ports.StreamInfo, logger ports.Logger) (*Sink, error) {
	opts := []nats.Option{
		nats.Name("pulseship"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", ports.Err(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", ports.String("url", nc.ConnectedUrl()))
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	logger.Info("nats sink connected", ports.String("url", nc.ConnectedUrl()), ports.String("subject", subject))
	return newSink(nc, subject, info, logger), nil
}

func newSink(conn publisher, subject string, info ports.StreamInfo, logger ports.Logger) *Sink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Sink{conn: conn, subject: subject, info: info, logger: logger}
}

// Push publishes one sample as JSON.
func (s *Sink) Push(_ context.Context, sample []float64) error {
	data, err := json.Marshal(ports.NewSampleMessage(s.info, sample))
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", s.subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (s *Sink) Close() error {
	return s.conn.Drain()
}
