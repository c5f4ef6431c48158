package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/pulseship/internal/ports"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool { <-t.done; return true }

func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.Wait() }

func (t *fakeToken) Done() <-chan struct{} { return t.done }

func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	topics       []string
	payloads     [][]byte
	token        *fakeToken
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	if c.token != nil {
		return c.token
	}
	return completedToken(nil)
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestSink_Push(t *testing.T) {
	client := &fakeClient{}
	s := newSink(client, "", ports.StreamInfo{Name: "ShimmerGSR"})

	require.NoError(t, s.Push(context.Background(), []float64{250.25}))
	require.Equal(t, []string{DefaultTopic}, client.topics)

	var msg ports.SampleMessage
	require.NoError(t, json.Unmarshal(client.payloads[0], &msg))
	assert.Equal(t, []float64{250.25}, msg.Sample)

	require.NoError(t, s.Close())
	assert.True(t, client.disconnected)
}

func TestSink_PushTokenError(t *testing.T) {
	client := &fakeClient{token: completedToken(errors.New("not connected"))}
	s := newSink(client, "lab/gsr", ports.StreamInfo{})

	err := s.Push(context.Background(), []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lab/gsr")
}

func TestSink_PushCancelled(t *testing.T) {
	client := &fakeClient{token: &fakeToken{done: make(chan struct{})}}
	s := newSink(client, "", ports.StreamInfo{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Push(ctx, []float64{1}), context.Canceled)
}

func TestSink_PushTimeout(t *testing.T) {
	client := &fakeClient{token: &fakeToken{done: make(chan struct{})}}
	s := newSink(client, "", ports.StreamInfo{})
	s.timeout = 10 * time.Millisecond

	err := s.Push(context.Background(), []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
