package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter gives feedback while a reading is in progress. There is no
// known total, so terminals get a spinner.
type Reporter interface {
	Start(message string)
	Update(message string)
	Finish(message string)
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: os.Stderr}
	}
	return &TerminalReporter{w: os.Stderr}
}

// TerminalReporter displays a spinner in the terminal.
type TerminalReporter struct {
	w    io.Writer
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done sync.WaitGroup
}

func (r *TerminalReporter) Start(message string) {
	r.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)
	r.stop = make(chan struct{})
	r.done.Add(1)
	go func() {
		defer r.done.Done()
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-tick.C:
				_ = r.bar.Add(1)
			}
		}
	}()
}

func (r *TerminalReporter) Update(message string) {
	if r.bar != nil {
		r.bar.Describe(message)
	}
}

func (r *TerminalReporter) Finish(message string) {
	if r.bar == nil {
		return
	}
	close(r.stop)
	r.done.Wait()
	_ = r.bar.Finish()
	r.bar = nil
	if message != "" {
		fmt.Fprintln(r.w, message)
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	w io.Writer
}

// NewCIReporter returns a CIReporter writing to w.
func NewCIReporter(w io.Writer) *CIReporter {
	return &CIReporter{w: w}
}

func (r *CIReporter) Start(message string) {
	fmt.Fprintln(r.w, message)
}

func (r *CIReporter) Update(message string) {
	fmt.Fprintln(r.w, message)
}

func (r *CIReporter) Finish(message string) {
	if message != "" {
		fmt.Fprintln(r.w, message)
	}
}
