package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/palmguru/palmguru/internal/app"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/clipboard"
	"github.com/palmguru/palmguru/internal/dataurl"
	"github.com/palmguru/palmguru/internal/logging"
	"github.com/palmguru/palmguru/internal/markdown"
	"github.com/palmguru/palmguru/internal/progress"
	"github.com/palmguru/palmguru/internal/web"
)

var (
	analyzeFile   string
	analyzeCamera bool
	analyzeWarmup time.Duration
	analyzeCopy   bool
	analyzeRaw    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Read a palm from an image file or the camera",
	Long: `Runs one reading in the terminal: takes the palm image from --file or
the camera, sends it to the configured vision model and prints the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (analyzeFile == "") == !analyzeCamera {
			return fmt.Errorf("exactly one of --file or --camera is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.UseText()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		analyzer, err := createAnalyzerFromConfig(ctx, cfg)
		if err != nil {
			return err
		}

		var clip clipboard.Clipboard = clipboard.Discard
		if analyzeCopy {
			clip = clipboard.System{}
		}
		appCtl := app.New(analyzer, clip, app.WithCopyFeedbackDelay(cfg.CopyFeedbackDelay))
		defer appCtl.Close()

		capCtl := capture.NewController(createCameraFromConfig(cfg), func(img dataurl.DataURL) {
			appCtl.ImageReady(img.String())
		}, capture.WithMaxFileBytes(cfg.MaxUploadBytes))
		defer capCtl.Unmount()

		if analyzeFile != "" {
			err = loadFile(capCtl, analyzeFile)
		} else {
			err = captureFrame(ctx, capCtl, analyzeWarmup)
		}
		if err != nil {
			return err
		}

		reporter := progress.NewReporter()
		reporter.Start(web.LoadingText)
		err = appCtl.Analyze(ctx)
		reporter.Finish("")
		if err != nil {
			return errors.New(appCtl.State().Error)
		}

		result := appCtl.State().Result
		if analyzeRaw {
			fmt.Println(result)
		} else if err := markdown.Terminal(os.Stdout, markdown.Render(result)); err != nil {
			return fmt.Errorf("rendering reading: %w", err)
		}

		if analyzeCopy {
			// The failure is reported through the copy message.
			_ = appCtl.CopyResult(ctx)
			fmt.Fprintln(os.Stderr, appCtl.State().CopyMessage)
		}
		fmt.Fprintf(os.Stderr, "\n%s\n", web.Disclaimer)
		return nil
	},
}

func loadFile(capCtl *capture.Controller, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	// An empty content type makes the controller sniff the format.
	capCtl.SelectFile(filepath.Base(path), "", f)
	capCtl.Wait()

	if snap := capCtl.Snapshot(); snap.Error != "" {
		return errors.New(snap.Error)
	}
	return nil
}

func captureFrame(ctx context.Context, capCtl *capture.Controller, warmup time.Duration) error {
	if err := capCtl.Mount(ctx); err != nil {
		return errors.New(capture.CameraErrorMessage)
	}

	fmt.Fprintf(os.Stderr, "Hold your palm up to the camera... capturing in %s\n", warmup)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(warmup):
	}
	return capCtl.Capture()
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "palm image to read")
	analyzeCmd.Flags().BoolVar(&analyzeCamera, "camera", false, "capture the palm from the configured camera")
	analyzeCmd.Flags().DurationVar(&analyzeWarmup, "warmup", 3*time.Second, "time to position your hand before the camera captures")
	analyzeCmd.Flags().BoolVar(&analyzeCopy, "copy", false, "copy the reading to the clipboard")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "print the reading as markdown without styling")
	rootCmd.AddCommand(analyzeCmd)
}
