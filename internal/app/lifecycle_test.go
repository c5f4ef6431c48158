package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/pulseship/internal/adapters/fake"
	logAdapter "github.com/bft-labs/pulseship/internal/adapters/log"
	"github.com/bft-labs/pulseship/internal/domain"
	"github.com/bft-labs/pulseship/internal/ports"
)

type move struct {
	from, to State
}

// recorder keeps every transition it is told about.
type recorder struct {
	mu    sync.Mutex
	moves []move
}

func (r *recorder) OnStateChange(previous, current State, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, move{previous, current})
}

func (r *recorder) Moves() []move {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]move(nil), r.moves...)
}

func newTestLifecycle(emitter EventEmitter) *Lifecycle {
	return NewLifecycle(logAdapter.NewNoopLogger(), emitter)
}

func TestLifecycle_TransitionMatrix(t *testing.T) {
	all := []State{StateStopped, StateStarting, StateRunning, StateStopping, StateCrashed}
	legal := map[move]bool{
		{StateStopped, StateStarting}:  true,
		{StateStarting, StateRunning}:  true,
		{StateStarting, StateStopping}: true,
		{StateStarting, StateCrashed}:  true,
		{StateRunning, StateStopping}:  true,
		{StateRunning, StateCrashed}:   true,
		{StateStopping, StateStopped}:  true,
		{StateStopping, StateCrashed}:  true,
		{StateCrashed, StateStarting}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				l := newTestLifecycle(nil)
				l.state = from

				err := l.TransitionTo(to, "matrix")
				switch {
				case legal[move{from, to}]:
					require.NoError(t, err)
					assert.Equal(t, to, l.State())
				case from == StateStopped || from == StateCrashed:
					assert.ErrorIs(t, err, domain.ErrNotRunning)
					assert.Equal(t, from, l.State())
				default:
					assert.ErrorIs(t, err, domain.ErrAlreadyRunning)
					assert.Equal(t, from, l.State())
				}
			})
		}
	}
}

func TestLifecycle_StartStopGates(t *testing.T) {
	tests := []struct {
		state          State
		start, running bool
	}{
		{StateStopped, true, false},
		{StateStarting, false, true},
		{StateRunning, false, true},
		{StateStopping, false, false},
		{StateCrashed, true, false},
	}
	for _, tt := range tests {
		l := newTestLifecycle(nil)
		l.state = tt.state
		assert.Equal(t, tt.start, l.CanStart(), "CanStart in %s", tt.state)
		assert.Equal(t, tt.running, l.CanStop(), "CanStop in %s", tt.state)
	}
	assert.Equal(t, "Unknown", State(42).String())
}

func TestLifecycle_CancelReachesWorkers(t *testing.T) {
	l := newTestLifecycle(nil)
	l.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	l.SetCancel(cancel)
	l.Go("reader", func() error {
		<-ctx.Done()
		return ctx.Err()
	})
	l.Go("failing", func() error { return errors.New("boom") })

	l.Cancel()
	assert.NoError(t, l.WaitWithTimeout(time.Second))
}

func TestLifecycle_WaitWithTimeout_StuckWorker(t *testing.T) {
	l := newTestLifecycle(nil)
	release := make(chan struct{})
	defer close(release)
	l.Go("stuck", func() error {
		<-release
		return nil
	})

	assert.ErrorIs(t, l.WaitWithTimeout(10*time.Millisecond), domain.ErrShutdownTimeout)
}

func TestRunner_CancelDuringScanStops(t *testing.T) {
	silent := fake.New("/dev/ttyUSB0")
	silent.OnConnect = fake.Silent()

	cfg := testConfig()
	cfg.ConnectTimeout = 5 * time.Second
	rec := &recorder{}
	r := NewRunner(cfg,
		WithDevices(listPorts("/dev/ttyUSB0"), func(string) (ports.Device, error) { return silent, nil }, nil),
		WithSink(&recordingSink{}),
		WithOutput(&syncBuffer{}),
		WithEmitter(rec),
	)

	go func() {
		for r.State() != StateStarting {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)
		r.Stop()
	}()

	start := time.Now()
	require.NoError(t, r.Run(context.Background()))
	assert.Less(t, time.Since(start), cfg.ConnectTimeout)
	assert.Equal(t, StateStopped, r.State())
	assert.Equal(t, []move{
		{StateStopped, StateStarting},
		{StateStarting, StateStopping},
		{StateStopping, StateStopped},
	}, rec.Moves())
	assert.Equal(t, 1, silent.Disconnects())
}

func TestRunner_NoDeviceCrashes(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(testConfig(),
		WithDevices(listPorts(), func(string) (ports.Device, error) { return nil, errors.New("unused") }, nil),
		WithSink(&recordingSink{}),
		WithOutput(&syncBuffer{}),
		WithEmitter(rec),
	)

	err := r.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrNoDeviceFound)
	assert.Equal(t, []move{
		{StateStopped, StateStarting},
		{StateStarting, StateCrashed},
	}, rec.Moves())

	// A crashed runner may be started again.
	err = r.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrNoDeviceFound)
	assert.Equal(t, StateCrashed, r.State())
	assert.Len(t, rec.Moves(), 4)
}
