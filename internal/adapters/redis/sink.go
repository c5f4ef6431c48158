// Package redis appends samples to a Redis stream.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/bft-labs/pulseship/internal/ports"
)

// DefaultStream is used when no stream key is configured.
const DefaultStream = "pulseship:gsr"

// DefaultMaxLen bounds the stream with approximate trimming.
const DefaultMaxLen = 100000

// Sink implements ports.Sink with XADD. Push waits for the server reply.
type Sink struct {
	client *redis.Client
	stream string
	maxLen int64
	info   ports.StreamInfo
}

// Dial parses url (redis://...) and returns a sink appending to stream.
// authKey, when set, overrides the URL password.
func Dial(ctx context.Context, url, stream, authKey string, info ports.StreamInfo, logger ports.Logger) (*Sink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if authKey != "" {
		opts.Password = authKey
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	logger.Info("redis sink connected", ports.String("addr", opts.Addr), ports.String("stream", stream))
	return NewSink(client, stream, info), nil
}

// NewSink wraps an existing client.
func NewSink(client *redis.Client, stream string, info ports.StreamInfo) *Sink {
	if stream == "" {
		stream = DefaultStream
	}
	return &Sink{client: client, stream: stream, maxLen: DefaultMaxLen, info: info}
}

// Push appends one entry with the outlet identity and the sample values.
func (s *Sink) Push(ctx context.Context, sample []float64) error {
	msg := ports.NewSampleMessage(s.info, sample)
	values := map[string]interface{}{
		"stream":    msg.Stream,
		"source_id": msg.SourceID,
		"timestamp": msg.Timestamp.UnixMilli(),
	}
	for i, v := range msg.Sample {
		values["ch"+strconv.Itoa(i)] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Close closes the client.
func (s *Sink) Close() error {
	return s.client.Close()
}
