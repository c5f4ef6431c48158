package pipeline

import (
	"fmt"

	"github.com/bft-labs/pulseship/internal/domain"
)

// Indices are the positions of the pipeline's channels within a frame.
type Indices struct {
	AccelX    int
	AccelY    int
	AccelZ    int
	GSR       int
	PPG       int
	Timestamp int
}

func (ix Indices) max() int {
	m := ix.AccelX
	for _, v := range []int{ix.AccelY, ix.AccelZ, ix.GSR, ix.PPG, ix.Timestamp} {
		if v > m {
			m = v
		}
	}
	return m
}

// Samples are the readings extracted from one frame.
type Samples struct {
	AccelX    domain.Reading
	AccelY    domain.Reading
	AccelZ    domain.Reading
	GSR       domain.Reading
	PPG       domain.Reading
	Timestamp domain.Reading
}

// Extract reads the channels at ix from f.
func (ix Indices) Extract(f *domain.Frame) (Samples, error) {
	if ix.max() >= f.Len() {
		return Samples{}, fmt.Errorf("%w: %d channels, need index %d", domain.ErrFrameLayout, f.Len(), ix.max())
	}
	return Samples{
		AccelX:    f.At(ix.AccelX),
		AccelY:    f.At(ix.AccelY),
		AccelZ:    f.At(ix.AccelZ),
		GSR:       f.At(ix.GSR),
		PPG:       f.At(ix.PPG),
		Timestamp: f.At(ix.Timestamp),
	}, nil
}

// PPGChannel returns the PPG channel alias for a hardware version.
func PPGChannel(v domain.HardwareVersion) domain.ChannelKey {
	if v == domain.HardwareShimmer3 {
		return domain.ChannelKey{Name: domain.ChannelInternalADCA13, Format: domain.FormatCAL}
	}
	return domain.ChannelKey{Name: domain.ChannelInternalADCA14, Format: domain.FormatCAL}
}

// indexState is one of unresolved, resolved or failed.
type indexState interface {
	isIndexState()
}

type unresolved struct{}

type resolved struct {
	indices Indices
}

type failed struct {
	err error
}

func (unresolved) isIndexState() {}
func (resolved) isIndexState()   {}
func (failed) isIndexState()     {}

// Indexer resolves channel positions from the first frame of a session and
// reuses them for every later frame. A failed resolution is permanent.
type Indexer struct {
	state   indexState
	version func() domain.HardwareVersion
}

// NewIndexer returns an unresolved indexer. version is queried once, during
// resolution, to choose the PPG channel.
func NewIndexer(version func() domain.HardwareVersion) *Indexer {
	return &Indexer{state: unresolved{}, version: version}
}

// Indices returns the channel positions for f, resolving them if this is the
// first frame.
func (x *Indexer) Indices(f *domain.Frame) (Indices, error) {
	switch s := x.state.(type) {
	case resolved:
		return s.indices, nil
	case failed:
		return Indices{}, s.err
	default:
		ix, err := x.resolve(f)
		if err != nil {
			x.state = failed{err: err}
			return Indices{}, err
		}
		x.state = resolved{indices: ix}
		return ix, nil
	}
}

// Resolved reports whether positions have been resolved successfully.
func (x *Indexer) Resolved() bool {
	_, ok := x.state.(resolved)
	return ok
}

func (x *Indexer) resolve(f *domain.Frame) (Indices, error) {
	var missing []domain.ChannelKey
	lookup := func(key domain.ChannelKey) int {
		i, ok := f.Index(key)
		if !ok {
			missing = append(missing, key)
		}
		return i
	}
	cal := func(name string) domain.ChannelKey {
		return domain.ChannelKey{Name: name, Format: domain.FormatCAL}
	}

	ix := Indices{
		AccelX:    lookup(cal(domain.ChannelAccelX)),
		AccelY:    lookup(cal(domain.ChannelAccelY)),
		AccelZ:    lookup(cal(domain.ChannelAccelZ)),
		GSR:       lookup(cal(domain.ChannelGSR)),
		PPG:       lookup(PPGChannel(x.version())),
		Timestamp: lookup(cal(domain.ChannelSystemTimestamp)),
	}
	if len(missing) > 0 {
		return Indices{}, &domain.ChannelResolutionError{Missing: missing}
	}
	return ix, nil
}
