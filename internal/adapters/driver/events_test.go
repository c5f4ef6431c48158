package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/pulseship/internal/domain"
)

func TestEvents_SendAndShutdown(t *testing.T) {
	e := NewEvents(4)

	require.True(t, e.Acquire())
	assert.True(t, e.Send(domain.StateChanged{State: domain.StateConnecting}))
	e.Release()

	assert.True(t, e.Shutdown(nil, domain.StateChanged{State: domain.StateNone}))
	assert.False(t, e.Shutdown(nil, nil))
	assert.False(t, e.Acquire())
	assert.True(t, e.Closed())

	var got []domain.Event
	for ev := range e.C() {
		got = append(got, ev)
	}
	assert.Equal(t, []domain.Event{
		domain.StateChanged{State: domain.StateConnecting},
		domain.StateChanged{State: domain.StateNone},
	}, got)
}

func TestEvents_ShutdownUnblocksProducer(t *testing.T) {
	e := NewEvents(0)

	require.True(t, e.Acquire())
	sent := make(chan bool, 1)
	go func() {
		defer e.Release()
		sent <- e.Send(domain.Notification{Message: "nobody listening"})
	}()

	time.Sleep(10 * time.Millisecond)
	e.Shutdown(nil, nil)

	select {
	case ok := <-sent:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("producer still blocked after shutdown")
	}
}
