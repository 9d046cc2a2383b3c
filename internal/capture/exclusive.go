package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrCameraBusy is returned by an exclusive camera while another stream
// holds the device.
var ErrCameraBusy = fmt.Errorf("capture: camera in use by another session: %w", ErrCameraUnavailable)

// Exclusive shares one device between controllers: at most one stream is
// open at a time, and the device is free again once every track of that
// stream has been stopped.
func Exclusive(cam Camera) Camera {
	return &exclusiveCamera{cam: cam}
}

type exclusiveCamera struct {
	cam Camera

	mu   sync.Mutex
	held bool
}

func (e *exclusiveCamera) Open(ctx context.Context, cons Constraints) (Stream, error) {
	e.mu.Lock()
	if e.held {
		e.mu.Unlock()
		return nil, ErrCameraBusy
	}
	e.held = true
	e.mu.Unlock()

	s, err := e.cam.Open(ctx, cons)
	if err != nil {
		e.release()
		return nil, err
	}

	inner := s.Tracks()
	if len(inner) == 0 {
		e.release()
		return s, nil
	}

	var remaining atomic.Int32
	remaining.Store(int32(len(inner)))
	ls := &leasedStream{Stream: s, tracks: make([]Track, len(inner))}
	for i, t := range inner {
		ls.tracks[i] = &leasedTrack{Track: t, done: func() {
			if remaining.Add(-1) == 0 {
				e.release()
			}
		}}
	}
	return ls, nil
}

func (e *exclusiveCamera) release() {
	e.mu.Lock()
	e.held = false
	e.mu.Unlock()
}

type leasedStream struct {
	Stream
	tracks []Track
}

func (s *leasedStream) Tracks() []Track { return s.tracks }

type leasedTrack struct {
	Track
	once sync.Once
	done func()
}

func (t *leasedTrack) Stop() {
	t.once.Do(func() {
		t.Track.Stop()
		t.done()
	})
}
