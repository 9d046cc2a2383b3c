// Package capture owns the camera lifecycle and turns camera frames or
// uploaded files into encoded still images.
//
// The controller is a four-state machine:
//
//	idle --mount--> camera_active | camera_error
//	camera_active --capture--> image_captured
//	any --file selected--> image_captured (asynchronously)
//	image_captured --retake--> camera_active | camera_error
//
// Every transition that leaves camera_active stops the held stream's
// tracks, and Unmount releases whatever is held regardless of state.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/palmguru/palmguru/internal/apperr"
	"github.com/palmguru/palmguru/internal/dataurl"
	"github.com/palmguru/palmguru/internal/logging"
)

// State is the acquisition state.
type State string

const (
	StateIdle          State = "idle"
	StateCameraActive  State = "camera_active"
	StateImageCaptured State = "image_captured"
	StateCameraError   State = "camera_error"
)

const (
	// CameraErrorMessage is shown when the camera cannot be acquired.
	CameraErrorMessage = "Could not access camera. Please ensure camera permissions are granted. You can still upload an image."

	// FileErrorMessage is shown when an upload cannot be read as an image.
	FileErrorMessage = "Could not read the selected file. Please choose an image."

	// DefaultMaxFileBytes caps how much of an upload is read.
	DefaultMaxFileBytes = 10 << 20
)

// ErrNotActive is returned by Capture when no live stream is held.
var ErrNotActive = errors.New("capture: camera is not active")

// Snapshot is the renderable view of the controller.
type Snapshot struct {
	State        State  `json:"state"`
	Error        string `json:"error,omitempty"`
	Image        string `json:"image,omitempty"`
	CameraActive bool   `json:"camera_active"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithConstraints overrides the default rear-facing constraint.
func WithConstraints(c Constraints) Option {
	return func(ctrl *Controller) { ctrl.constraints = c }
}

// WithMaxFileBytes limits how many bytes SelectFile reads.
func WithMaxFileBytes(n int64) Option {
	return func(ctrl *Controller) {
		if n > 0 {
			ctrl.maxFileBytes = n
		}
	}
}

// WithOnChange registers a callback invoked after every state change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(ctrl *Controller) { ctrl.onChange = fn }
}

// WithLogger sets the entry used for controller logs.
func WithLogger(log *logrus.Entry) Option {
	return func(ctrl *Controller) { ctrl.log = log }
}

// Controller is the image acquisition state machine. It is safe for
// concurrent use.
type Controller struct {
	camera       Camera
	onImage      func(dataurl.DataURL)
	onChange     func(Snapshot)
	constraints  Constraints
	maxFileBytes int64
	log          *logrus.Entry

	mu         sync.Mutex
	state      State
	errMsg     string
	image      dataurl.DataURL
	stream     Stream
	generation uint64
	reads      sync.WaitGroup
}

// NewController creates an idle controller. onImage receives every image
// produced by a capture or a completed file read.
func NewController(camera Camera, onImage func(dataurl.DataURL), opts ...Option) *Controller {
	if camera == nil {
		camera = UnavailableCamera{}
	}
	c := &Controller{
		camera:       camera,
		onImage:      onImage,
		constraints:  Constraints{FacingMode: FacingEnvironment},
		maxFileBytes: DefaultMaxFileBytes,
		log:          logging.WithComponent("capture"),
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount acquires the camera. A failure is not returned as fatal: the
// controller moves to camera_error and uploads stay available. The returned
// error is an *apperr.Error of type camera.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	gen := c.beginOpenLocked()
	c.mu.Unlock()

	return c.openCamera(ctx, gen)
}

// Capture rasterises the current frame to a JPEG still, releases the
// stream and emits the image.
func (c *Controller) Capture() error {
	c.mu.Lock()
	if c.state != StateCameraActive || c.stream == nil {
		c.mu.Unlock()
		return ErrNotActive
	}

	frame, err := c.stream.Frame()
	if err != nil {
		c.mu.Unlock()
		return apperr.Camera("Could not capture a frame from the camera.", err)
	}
	img, err := dataurl.EncodeJPEG(frame)
	if err != nil {
		c.mu.Unlock()
		return apperr.Internal("Could not encode the captured frame.", err)
	}

	c.releaseLocked()
	c.generation++ // a pending file read must not replace the capture
	c.image = img
	c.errMsg = ""
	c.state = StateImageCaptured
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.WithField("bytes", len(img.Payload)).Info("capture: frame captured")
	c.emit(img)
	c.changed(snap)
	return nil
}

// SelectFile releases any stream and reads r in the background. A newer
// selection supersedes an older one still being read. Empty or non-image
// files set the inline error and emit nothing.
func (c *Controller) SelectFile(name, contentType string, r io.Reader) {
	c.mu.Lock()
	c.releaseLocked()
	if c.state == StateCameraActive {
		c.state = StateIdle
	}
	c.errMsg = ""
	c.generation++
	gen := c.generation
	snap := c.snapshotLocked()
	c.reads.Add(1)
	c.mu.Unlock()

	c.changed(snap)

	go func() {
		defer c.reads.Done()
		img, err := c.readFile(contentType, r)

		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			c.log.WithField("file", name).Debug("capture: superseded file read discarded")
			return
		}
		if err != nil {
			c.errMsg = FileErrorMessage
			snap := c.snapshotLocked()
			c.mu.Unlock()
			c.log.WithError(err).WithField("file", name).Warn("capture: reading file")
			c.changed(snap)
			return
		}
		c.image = img
		c.state = StateImageCaptured
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.log.WithFields(logrus.Fields{"file": name, "mime": img.MIMEType}).Info("capture: file loaded")
		c.emit(img)
		c.changed(snap)
	}()
}

// Wait blocks until every file read started so far has finished.
func (c *Controller) Wait() {
	c.reads.Wait()
}

func (c *Controller) readFile(contentType string, r io.Reader) (dataurl.DataURL, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxFileBytes+1))
	if err != nil {
		return dataurl.DataURL{}, err
	}
	if len(data) == 0 {
		return dataurl.DataURL{}, dataurl.ErrEmptyImage
	}
	if int64(len(data)) > c.maxFileBytes {
		return dataurl.DataURL{}, fmt.Errorf("file exceeds %d bytes", c.maxFileBytes)
	}

	mime := strings.TrimSpace(contentType)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if !strings.HasPrefix(mime, "image/") {
		detected, err := dataurl.DetectImageType(data)
		if err != nil {
			return dataurl.DataURL{}, err
		}
		mime = detected
	}
	return dataurl.Encode(mime, data), nil
}

// Retake clears the still image and reacquires the camera. It is a no-op
// outside image_captured. Until the device opens the controller reads as
// idle.
func (c *Controller) Retake(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateImageCaptured {
		c.mu.Unlock()
		return nil
	}
	gen := c.beginOpenLocked()
	c.mu.Unlock()

	return c.openCamera(ctx, gen)
}

// Reset releases the camera, discards any pending file read and returns
// to idle.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.releaseLocked()
	c.generation++
	c.image = dataurl.DataURL{}
	c.errMsg = ""
	c.state = StateIdle
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.changed(snap)
}

// Unmount releases any held stream. It is safe to call more than once and
// from any state.
func (c *Controller) Unmount() {
	c.mu.Lock()
	held := c.stream != nil
	c.releaseLocked()
	c.generation++
	if c.state == StateCameraActive {
		c.state = StateIdle
	}
	c.mu.Unlock()

	if held {
		c.log.Info("capture: camera released")
	}
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// CurrentFrame encodes the live frame as a JPEG preview without leaving
// camera_active.
func (c *Controller) CurrentFrame() (dataurl.DataURL, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCameraActive || c.stream == nil {
		return dataurl.DataURL{}, ErrNotActive
	}
	frame, err := c.stream.Frame()
	if err != nil {
		return dataurl.DataURL{}, apperr.Camera("Could not read a frame from the camera.", err)
	}
	return dataurl.EncodeJPEG(frame)
}

// beginOpenLocked releases any held stream and clears the still image.
// The returned generation identifies the open that follows; any later
// transition supersedes it.
func (c *Controller) beginOpenLocked() uint64 {
	c.releaseLocked()
	c.image = dataurl.DataURL{}
	c.errMsg = ""
	c.state = StateIdle
	c.generation++
	return c.generation
}

// openCamera opens the device without holding the lock, since opening may
// block while it warms up. A stream that arrives after a newer transition
// is released at once.
func (c *Controller) openCamera(ctx context.Context, gen uint64) error {
	stream, err := c.camera.Open(ctx, c.constraints)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		if stream != nil {
			stopTracks(stream)
		}
		c.log.Debug("capture: superseded camera open discarded")
		return nil
	}
	if err != nil {
		c.state = StateCameraError
		c.errMsg = CameraErrorMessage
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.log.WithError(err).Warn("capture: camera unavailable, upload only")
		c.changed(snap)
		return apperr.Camera(CameraErrorMessage, err)
	}

	c.stream = stream
	c.state = StateCameraActive
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Info("capture: camera active")
	c.changed(snap)
	return nil
}

func stopTracks(s Stream) {
	for _, t := range s.Tracks() {
		t.Stop()
	}
}

func (c *Controller) releaseLocked() {
	if c.stream == nil {
		return
	}
	stopTracks(c.stream)
	c.stream = nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:        c.state,
		Error:        c.errMsg,
		Image:        c.image.String(),
		CameraActive: c.state == StateCameraActive,
	}
}

func (c *Controller) emit(img dataurl.DataURL) {
	if c.onImage != nil {
		c.onImage(img)
	}
}

func (c *Controller) changed(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
