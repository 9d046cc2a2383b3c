package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palmguru/palmguru/internal/analysis"
	"github.com/palmguru/palmguru/internal/apperr"
	"github.com/palmguru/palmguru/internal/clipboard"
)

const palmImage = "data:image/jpeg;base64,/9j/4AAQ"

// analyzerFunc adapts a function to analysis.Analyzer.
type analyzerFunc func(ctx context.Context, image string) (string, error)

func (f analyzerFunc) Analyze(ctx context.Context, image string) (string, error) {
	return f(ctx, image)
}

// countingAnalyzer returns a fixed reading and counts calls.
type countingAnalyzer struct {
	calls  atomic.Int32
	result string
	err    error
}

func (a *countingAnalyzer) Analyze(ctx context.Context, image string) (string, error) {
	a.calls.Add(1)
	return a.result, a.err
}

// blockingAnalyzer holds every call until release is closed.
type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
	result  string
}

func newBlockingAnalyzer(result string) *blockingAnalyzer {
	return &blockingAnalyzer{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
		result:  result,
	}
}

func (a *blockingAnalyzer) Analyze(ctx context.Context, image string) (string, error) {
	a.started <- struct{}{}
	<-a.release
	return a.result, nil
}

// recorder collects published states.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestAnalyzeWithoutImageIsValidationError(t *testing.T) {
	a := &countingAnalyzer{result: "reading"}
	c := New(a, nil)
	rec := &recorder{}
	c.Subscribe(rec.record)

	err := c.Analyze(t.Context())
	require.Error(t, err)
	require.Equal(t, apperr.TypeValidation, apperr.TypeOf(err))

	st := c.State()
	require.Equal(t, ValidationMessage, st.Error)
	require.False(t, st.Loading)
	require.Equal(t, int32(0), a.calls.Load())

	for _, s := range rec.all() {
		require.False(t, s.Loading, "loading must never be set")
	}
}

func TestImageReadyClearsPreviousState(t *testing.T) {
	a := &countingAnalyzer{result: "# Reading"}
	c := New(a, clipboard.Discard, WithCopyFeedbackDelay(time.Hour))
	c.ImageReady(palmImage)
	require.NoError(t, c.Analyze(t.Context()))
	require.NoError(t, c.CopyResult(t.Context()))
	require.Equal(t, CopySuccessMessage, c.State().CopyMessage)

	c.ImageReady("data:image/png;base64,AAAA")

	st := c.State()
	require.Equal(t, "data:image/png;base64,AAAA", st.Image)
	require.Empty(t, st.Result)
	require.Empty(t, st.Error)
	require.Empty(t, st.CopyMessage)
	require.Equal(t, PhaseImage, st.Phase())
}

func TestAnalyzeSuccess(t *testing.T) {
	a := &countingAnalyzer{result: "## Heart Line\nStrong."}
	c := New(a, nil)
	rec := &recorder{}
	c.Subscribe(rec.record)

	c.ImageReady(palmImage)
	require.NoError(t, c.Analyze(t.Context()))

	st := c.State()
	require.Equal(t, "## Heart Line\nStrong.", st.Result)
	require.False(t, st.Loading)
	require.Empty(t, st.Error)
	require.Equal(t, PhaseResult, st.Phase())

	states := rec.all()
	require.Len(t, states, 3)
	require.True(t, states[1].Loading)
	require.False(t, states[2].Loading)
}

func TestAnalyzeFailureKeepsImage(t *testing.T) {
	a := &countingAnalyzer{err: &analysis.AnalysisError{Message: "Failed to analyze palm: quota exceeded"}}
	c := New(a, nil)
	c.ImageReady(palmImage)

	err := c.Analyze(t.Context())
	require.Error(t, err)
	require.Equal(t, apperr.TypeBackend, apperr.TypeOf(err))

	st := c.State()
	require.Equal(t, "Failed to analyze palm: quota exceeded", st.Error)
	require.Equal(t, palmImage, st.Image)
	require.Empty(t, st.Result)
	require.False(t, st.Loading)

	// Retry with the same image.
	a.err = nil
	a.result = "second try"
	require.NoError(t, c.Analyze(t.Context()))
	require.Equal(t, "second try", c.State().Result)
	require.Empty(t, c.State().Error)
}

func TestAnalyzePlainErrorIsPrefixed(t *testing.T) {
	c := New(&countingAnalyzer{err: errors.New("network down")}, nil)
	c.ImageReady(palmImage)

	require.Error(t, c.Analyze(t.Context()))
	require.Equal(t, "Failed to analyze palm: network down", c.State().Error)
}

func TestStartAnalysisSetsLoadingBeforeRunning(t *testing.T) {
	a := &countingAnalyzer{result: "# Reading"}
	c := New(a, nil)
	c.ImageReady(palmImage)

	run, err := c.StartAnalysis(t.Context())
	require.NoError(t, err)
	require.True(t, c.State().Loading)
	require.Equal(t, int32(0), a.calls.Load())

	require.NoError(t, run())
	st := c.State()
	require.False(t, st.Loading)
	require.Equal(t, "# Reading", st.Result)
	require.Equal(t, int32(1), a.calls.Load())
}

func TestStartAnalysisWithoutImage(t *testing.T) {
	c := New(&countingAnalyzer{}, nil)

	run, err := c.StartAnalysis(t.Context())
	require.Nil(t, run)
	require.Equal(t, apperr.TypeValidation, apperr.TypeOf(err))
	require.False(t, c.State().Loading)
}

func TestStartOverBeforeRunDropsResponse(t *testing.T) {
	a := &countingAnalyzer{result: "# Reading"}
	c := New(a, nil)
	c.ImageReady(palmImage)

	run, err := c.StartAnalysis(t.Context())
	require.NoError(t, err)
	c.StartOver()

	require.ErrorIs(t, run(), ErrSuperseded)
	require.Equal(t, State{}, c.State())
}

func TestStartOverWhileLoadingDropsStaleResponse(t *testing.T) {
	a := newBlockingAnalyzer("stale reading")
	c := New(a, nil)
	c.ImageReady(palmImage)

	done := make(chan error, 1)
	go func() { done <- c.Analyze(context.Background()) }()
	<-a.started
	require.True(t, c.State().Loading)

	c.StartOver()
	st := c.State()
	require.False(t, st.Loading)
	require.Empty(t, st.Image)
	require.Equal(t, PhaseEmpty, st.Phase())

	close(a.release)
	require.ErrorIs(t, <-done, ErrSuperseded)
	require.Equal(t, State{}, c.State())
}

func TestNewImageWhileLoadingSupersedes(t *testing.T) {
	a := newBlockingAnalyzer("old reading")
	c := New(a, nil)
	c.ImageReady(palmImage)

	done := make(chan error, 1)
	go func() { done <- c.Analyze(context.Background()) }()
	<-a.started

	c.ImageReady("data:image/png;base64,BBBB")
	close(a.release)
	require.ErrorIs(t, <-done, ErrSuperseded)

	st := c.State()
	require.Equal(t, "data:image/png;base64,BBBB", st.Image)
	require.Empty(t, st.Result)
	require.False(t, st.Loading)
}

func TestSupersededAnalysisIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	c := New(analyzerFunc(func(ctx context.Context, image string) (string, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	}), nil)
	c.ImageReady(palmImage)

	done := make(chan error, 1)
	go func() { done <- c.Analyze(context.Background()) }()
	<-started

	c.StartOver()
	<-cancelled
	require.ErrorIs(t, <-done, ErrSuperseded)
	require.Empty(t, c.State().Error)
}

func TestSecondAnalyzeWins(t *testing.T) {
	var n atomic.Int32
	release := make(chan struct{})
	c := New(analyzerFunc(func(ctx context.Context, image string) (string, error) {
		if n.Add(1) == 1 {
			<-release
			return "first", nil
		}
		return "second", nil
	}), nil)
	c.ImageReady(palmImage)

	first := make(chan error, 1)
	go func() { first <- c.Analyze(context.Background()) }()
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.Analyze(t.Context()))
	close(release)
	require.ErrorIs(t, <-first, ErrSuperseded)
	require.Equal(t, "second", c.State().Result)
}

func TestCopyResultWithoutResultIsNoop(t *testing.T) {
	var copies atomic.Int32
	clip := clipboard.Func(func(ctx context.Context, text string) error {
		copies.Add(1)
		return nil
	})
	c := New(&countingAnalyzer{}, clip)
	c.ImageReady(palmImage)

	require.NoError(t, c.CopyResult(t.Context()))
	require.Equal(t, int32(0), copies.Load())
	require.Empty(t, c.State().CopyMessage)
}

func TestCopyFeedbackClearsAfterDelay(t *testing.T) {
	var copied string
	clip := clipboard.Func(func(ctx context.Context, text string) error {
		copied = text
		return nil
	})
	c := New(&countingAnalyzer{result: "# Reading"}, clip, WithCopyFeedbackDelay(50*time.Millisecond))
	c.ImageReady(palmImage)
	require.NoError(t, c.Analyze(t.Context()))

	require.NoError(t, c.CopyResult(t.Context()))
	require.Equal(t, "# Reading", copied)
	require.Equal(t, CopySuccessMessage, c.State().CopyMessage)
	require.True(t, c.State().CopySucceeded())

	require.Eventually(t, func() bool { return c.State().CopyMessage == "" }, time.Second, 5*time.Millisecond)
	require.Equal(t, "# Reading", c.State().Result)
}

func TestCopyFailureMessage(t *testing.T) {
	clip := clipboard.Func(func(ctx context.Context, text string) error {
		return errors.New("permission denied")
	})
	c := New(&countingAnalyzer{result: "# Reading"}, clip, WithCopyFeedbackDelay(time.Hour))
	c.ImageReady(palmImage)
	require.NoError(t, c.Analyze(t.Context()))

	err := c.CopyResult(t.Context())
	require.Error(t, err)
	require.Equal(t, apperr.TypeClipboard, apperr.TypeOf(err))

	st := c.State()
	require.Equal(t, CopyFailureMessage, st.CopyMessage)
	require.Equal(t, "# Reading", st.Result)
	require.Empty(t, st.Error)
}

func TestOlderCopyTimerDoesNotClearNewerMessage(t *testing.T) {
	var fail atomic.Bool
	clip := clipboard.Func(func(ctx context.Context, text string) error {
		if fail.Load() {
			return errors.New("denied")
		}
		return nil
	})
	c := New(&countingAnalyzer{result: "text"}, clip, WithCopyFeedbackDelay(80*time.Millisecond))
	c.ImageReady(palmImage)
	require.NoError(t, c.Analyze(t.Context()))

	require.NoError(t, c.CopyResult(t.Context()))
	time.Sleep(50 * time.Millisecond)
	fail.Store(true)
	require.Error(t, c.CopyResult(t.Context()))

	// The first timer would have fired by now; the second message survives.
	time.Sleep(45 * time.Millisecond)
	require.Equal(t, CopyFailureMessage, c.State().CopyMessage)

	require.Eventually(t, func() bool { return c.State().CopyMessage == "" }, time.Second, 5*time.Millisecond)
}

func TestUnsubscribe(t *testing.T) {
	c := New(&countingAnalyzer{}, nil)
	rec := &recorder{}
	unsubscribe := c.Subscribe(rec.record)

	c.ImageReady(palmImage)
	unsubscribe()
	c.StartOver()

	require.Len(t, rec.all(), 1)
}

func TestPhase(t *testing.T) {
	require.Equal(t, PhaseEmpty, State{}.Phase())
	require.Equal(t, PhaseEmpty, State{Result: "orphan"}.Phase())
	require.Equal(t, PhaseImage, State{Image: palmImage}.Phase())
	require.Equal(t, PhaseResult, State{Image: palmImage, Result: "r"}.Phase())
}
