//go:build gocv
// +build gocv

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/palmguru/palmguru/internal/logging"
)

// GoCVCamera opens a host video device through OpenCV.
type GoCVCamera struct {
	Device int
}

func NewGoCVCamera(device int) *GoCVCamera {
	return &GoCVCamera{Device: device}
}

// Open starts capturing from the configured device. Host webcams have no
// facing direction, so the constraint is only logged.
func (c *GoCVCamera) Open(ctx context.Context, cons Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(c.Device)
	if err != nil {
		return nil, fmt.Errorf("opening video device %d: %w", c.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video device %d: %w", c.Device, ErrCameraUnavailable)
	}

	logging.WithFields(map[string]interface{}{
		"device":      c.Device,
		"facing_mode": cons.FacingMode,
	}).Debug("capture: video device opened")

	s := &gocvStream{vc: vc}
	s.track = &gocvTrack{stream: s}
	return s, nil
}

type gocvStream struct {
	mu      sync.Mutex
	vc      *gocv.VideoCapture
	track   *gocvTrack
	stopped bool
}

func (s *gocvStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, errors.New("capture: stream stopped")
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := s.vc.Read(&mat); !ok || mat.Empty() {
		return nil, errors.New("capture: no frame available")
	}
	return mat.ToImage()
}

func (s *gocvStream) Tracks() []Track {
	return []Track{s.track}
}

type gocvTrack struct {
	stream *gocvStream
	once   sync.Once
}

func (t *gocvTrack) Stop() {
	t.once.Do(func() {
		s := t.stream
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stopped = true
		if err := s.vc.Close(); err != nil {
			logging.WithError(err).Warn("capture: closing video device")
		}
	})
}
