package capture

import (
	"context"
	"errors"
	"image"
)

// FacingEnvironment asks for the rear-facing camera on devices that have one.
const FacingEnvironment = "environment"

// ErrCameraUnavailable is returned by cameras that cannot produce a stream.
var ErrCameraUnavailable = errors.New("capture: camera unavailable")

// Constraints narrows which device a Camera opens.
type Constraints struct {
	FacingMode string
}

// Camera acquires live video streams. Opening may prompt for permission or
// block while the device warms up.
type Camera interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is a live frame source. The caller that opened it must stop every
// track exactly once when done.
type Stream interface {
	Frame() (image.Image, error)
	Tracks() []Track
}

// Track is one device resource held by a stream.
type Track interface {
	Stop()
}

// UnavailableCamera never produces a stream. Use it for deployments without
// a capture device; uploads keep working.
type UnavailableCamera struct{}

func (UnavailableCamera) Open(ctx context.Context, c Constraints) (Stream, error) {
	return nil, ErrCameraUnavailable
}
