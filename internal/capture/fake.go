package capture

import (
	"context"
	"sync"
	"time"
)

// FakeCamera replays a scripted sequence of frames. When the script runs out
// it either reports end of stream or blocks until the context is cancelled,
// depending on HoldOpen. It exists for tests and for running the agent with
// no camera attached.
type FakeCamera struct {
	Frames   [][]byte
	HoldOpen bool
	// Pace inserts a delay before each frame, simulating capture cadence.
	Pace time.Duration

	mu     sync.Mutex
	opened bool
	next   int
}

func (f *FakeCamera) Open(_ context.Context, _ Hints) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = true
	f.next = 0
	return nil
}

func (f *FakeCamera) ReadFrame(ctx context.Context) (*Frame, error) {
	if f.Pace > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.Pace):
		}
	}

	f.mu.Lock()
	if f.next < len(f.Frames) {
		bytes := f.Frames[f.next]
		f.next++
		f.mu.Unlock()
		return &Frame{Bytes: bytes, CapturedAt: time.Now()}, nil
	}
	f.mu.Unlock()

	if !f.HoldOpen {
		return nil, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *FakeCamera) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = false
	return nil
}

var _ Camera = (*FakeCamera)(nil)
