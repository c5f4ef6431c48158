// Package mqtt publishes samples to an MQTT topic.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/bft-labs/pulseship/internal/ports"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "pulseship/gsr"

const disconnectQuiesce = 250 // ms

// publisher is the subset of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Sink implements ports.Sink on an MQTT client. Push waits for the publish
// token, so a slow broker stalls frame handling.
type Sink struct {
	client  publisher
	topic   string
	info    ports.StreamInfo
	timeout time.Duration
}

// Dial connects to broker and returns a sink publishing on topic at QoS 0.
// authKey, when set, is sent as the password.
func Dial(broker, topic, authKey string, info ports.StreamInfo, logger ports.Logger) (*Sink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("pulseship-" + uuid.NewString()[:8])
	if authKey != "" {
		opts.SetUsername("pulseship")
		opts.SetPassword(authKey)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", ports.Err(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker %s: %w", broker, token.Error())
	}
	logger.Info("mqtt sink connected", ports.String("broker", broker), ports.String("topic", topic))
	return newSink(client, topic, info), nil
}

func newSink(client publisher, topic string, info ports.StreamInfo) *Sink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Sink{client: client, topic: topic, info: info, timeout: 5 * time.Second}
}

// Push publishes one sample as JSON and waits for the token.
func (s *Sink) Push(ctx context.Context, sample []float64) error {
	payload, err := json.Marshal(ports.NewSampleMessage(s.info, sample))
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	token := s.client.Publish(s.topic, 0, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.timeout):
		return fmt.Errorf("publish %s: timed out after %s", s.topic, s.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", s.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *Sink) Close() error {
	s.client.Disconnect(disconnectQuiesce)
	return nil
}
