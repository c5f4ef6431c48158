package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/pulseship/internal/adapters/log"
	"github.com/bft-labs/pulseship/internal/ports"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
	drained  bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestSink_Push(t *testing.T) {
	conn := &fakeConn{}
	s := newSink(conn, "", ports.StreamInfo{Name: "ShimmerGSR", SourceID: "shimmer3gsr"}, log.NewNoopLogger())

	require.NoError(t, s.Push(context.Background(), []float64{250}))
	require.NoError(t, s.Push(context.Background(), []float64{251}))

	require.Len(t, conn.payloads, 2)
	assert.Equal(t, []string{DefaultSubject, DefaultSubject}, conn.subjects)

	var msg ports.SampleMessage
	require.NoError(t, json.Unmarshal(conn.payloads[1], &msg))
	assert.Equal(t, "ShimmerGSR", msg.Stream)
	assert.Equal(t, []float64{251}, msg.Sample)

	require.NoError(t, s.Close())
	assert.True(t, conn.drained)
}

func TestSink_PushError(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	s := newSink(conn, "lab.gsr", ports.StreamInfo{}, log.NewNoopLogger())

	err := s.Push(context.Background(), []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lab.gsr")
}
