//go:build !gocv
// +build !gocv

package capture

import (
	"context"
	"fmt"
)

// GoCVCamera is a placeholder when built without the gocv tag.
type GoCVCamera struct {
	Device int
}

func NewGoCVCamera(device int) *GoCVCamera {
	return &GoCVCamera{Device: device}
}

// Open always fails: the gocv build tag is not enabled.
func (c *GoCVCamera) Open(ctx context.Context, cons Constraints) (Stream, error) {
	return nil, fmt.Errorf("gocv build tag is not enabled: %w", ErrCameraUnavailable)
}
