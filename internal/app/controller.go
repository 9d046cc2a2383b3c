// Package app holds the page state and the transitions that change it:
// a new image, an analysis, starting over and copying the reading.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palmguru/palmguru/internal/analysis"
	"github.com/palmguru/palmguru/internal/apperr"
	"github.com/palmguru/palmguru/internal/clipboard"
	"github.com/palmguru/palmguru/internal/logging"
)

const (
	ValidationMessage  = "Please capture or upload a palm image first."
	CopySuccessMessage = "Copied to clipboard!"
	CopyFailureMessage = "Failed to copy!"
	UnknownError       = "An unknown error occurred."

	// CopyFeedbackDelay is how long a copy message stays visible.
	CopyFeedbackDelay = 3 * time.Second
)

// ErrSuperseded is returned by Analyze when a newer transition made its
// result irrelevant. The state was not touched.
var ErrSuperseded = errors.New("app: analysis superseded")

// Option configures a Controller.
type Option func(*Controller)

// WithCopyFeedbackDelay overrides CopyFeedbackDelay.
func WithCopyFeedbackDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.copyDelay = d
		}
	}
}

// WithLogger sets the entry used for controller logs.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Controller) { c.log = log }
}

// Controller owns State. Every change goes through one of its methods and
// is published to subscribers. It is safe for concurrent use.
type Controller struct {
	analyzer  analysis.Analyzer
	clip      clipboard.Clipboard
	copyDelay time.Duration
	log       *logrus.Entry

	mu sync.Mutex
	st State

	// epoch increases on every transition that invalidates an in-flight
	// analysis; a response is applied only if the epoch is unchanged.
	epoch  uint64
	cancel context.CancelFunc

	copyToken uint64
	copyTimer *time.Timer

	subs    map[int]func(State)
	nextSub int
}

// New creates a controller in the empty state.
func New(analyzer analysis.Analyzer, clip clipboard.Clipboard, opts ...Option) *Controller {
	if clip == nil {
		clip = clipboard.Discard
	}
	c := &Controller{
		analyzer:  analyzer,
		clip:      clip,
		copyDelay: CopyFeedbackDelay,
		log:       logging.WithComponent("app"),
		subs:      make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// Subscribe registers fn to receive a copy of the state after every
// transition. fn runs with the controller locked, so it must not block or
// call back into the controller. The returned function unsubscribes.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) publishLocked() {
	for _, fn := range c.subs {
		fn(c.st)
	}
}

// supersedeLocked drops interest in any in-flight analysis.
func (c *Controller) supersedeLocked() {
	c.epoch++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// ImageReady replaces the image and clears the reading, the error and the
// copy message.
func (c *Controller) ImageReady(image string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.st = State{Image: image}
	c.publishLocked()
}

// Analyze requests a reading of the current image and blocks until it
// completes. Without an image it fails with a validation error and never
// calls the analyser. If a newer transition happens first, the response is
// dropped and ErrSuperseded returned.
func (c *Controller) Analyze(ctx context.Context) error {
	run, err := c.StartAnalysis(ctx)
	if err != nil {
		return err
	}
	return run()
}

// StartAnalysis enters the loading state and returns the call that performs
// the analysis. The state is loading by the time StartAnalysis returns, so
// callers can report it before running the analysis in the background. run
// must be called exactly once; it returns what Analyze would.
func (c *Controller) StartAnalysis(ctx context.Context) (run func() error, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.st.HasImage() {
		c.st.Error = ValidationMessage
		c.publishLocked()
		return nil, apperr.Validation(ValidationMessage)
	}

	c.supersedeLocked()
	epoch := c.epoch
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	image := c.st.Image
	c.st.Loading = true
	c.st.Error = ""
	c.st.CopyMessage = ""
	c.publishLocked()

	return func() error {
		defer cancel()
		return c.finishAnalysis(ctx, epoch, image)
	}, nil
}

func (c *Controller) finishAnalysis(ctx context.Context, epoch uint64, image string) error {
	started := time.Now()
	result, err := c.analyzer.Analyze(ctx, image)

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		c.log.WithField("elapsed", time.Since(started)).Info("app: stale analysis dropped")
		return ErrSuperseded
	}
	c.cancel = nil
	c.st.Loading = false

	if err != nil {
		msg := analysisMessage(err)
		c.st.Error = msg
		c.publishLocked()
		c.log.WithError(err).Warn("app: analysis failed")
		return apperr.Backend(msg, err)
	}

	c.st.Result = result
	c.publishLocked()
	c.log.WithField("elapsed", time.Since(started)).Info("app: analysis complete")
	return nil
}

func analysisMessage(err error) string {
	var ae *analysis.AnalysisError
	if errors.As(err, &ae) {
		return ae.Message
	}
	msg := err.Error()
	if msg == "" {
		msg = UnknownError
	}
	return analysis.ErrorPrefix + msg
}

// StartOver clears everything. An in-flight analysis is abandoned and its
// response ignored.
func (c *Controller) StartOver() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.stopCopyTimerLocked()
	c.st = State{}
	c.publishLocked()
}

// CopyResult puts the reading on the clipboard and shows a transient
// message that clears after the copy feedback delay. It does nothing when
// there is no reading.
func (c *Controller) CopyResult(ctx context.Context) error {
	c.mu.Lock()
	text := c.st.Result
	c.mu.Unlock()

	if text == "" {
		return nil
	}

	err := c.clip.WriteText(ctx, text)
	msg := CopySuccessMessage
	if err != nil {
		msg = CopyFailureMessage
		c.log.WithError(err).Warn("app: copy failed")
	}

	c.mu.Lock()
	c.st.CopyMessage = msg
	c.copyToken++
	token := c.copyToken
	c.stopCopyTimerLocked()
	c.copyTimer = time.AfterFunc(c.copyDelay, func() { c.clearCopyMessage(token) })
	c.publishLocked()
	c.mu.Unlock()

	if err != nil {
		return apperr.Clipboard(CopyFailureMessage, err)
	}
	return nil
}

func (c *Controller) clearCopyMessage(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.copyToken || c.st.CopyMessage == "" {
		return
	}
	c.st.CopyMessage = ""
	c.copyTimer = nil
	c.publishLocked()
}

func (c *Controller) stopCopyTimerLocked() {
	if c.copyTimer != nil {
		c.copyTimer.Stop()
		c.copyTimer = nil
	}
}

// Close abandons any in-flight analysis and stops pending timers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.stopCopyTimerLocked()
	c.copyToken++
}
