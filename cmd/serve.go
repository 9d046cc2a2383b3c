package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/palmguru/palmguru/internal/app"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/clipboard"
	"github.com/palmguru/palmguru/internal/logging"
	"github.com/palmguru/palmguru/internal/server"
	"github.com/palmguru/palmguru/internal/session"
	"github.com/palmguru/palmguru/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PalmGuru web reader",
	Long:  `Starts a local web server with the PalmGuru page: capture or upload a palm photo, get a reading, copy it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		analyzer, err := createAnalyzerFromConfig(ctx, cfg)
		if err != nil {
			return err
		}

		var host clipboard.Clipboard = clipboard.Discard
		if cfg.HostClipboard {
			host = clipboard.System{}
		}

		registry := session.NewRegistry(session.Deps{
			Analyzer:       analyzer,
			Clipboard:      web.Clipboard(host),
			// One host device shared by every browser; a second page
			// falls back to uploads while the first holds it.
			Camera:         capture.Exclusive(createCameraFromConfig(cfg)),
			AppOptions:     []app.Option{app.WithCopyFeedbackDelay(cfg.CopyFeedbackDelay)},
			CaptureOptions: []capture.Option{capture.WithMaxFileBytes(cfg.MaxUploadBytes)},
		}, cfg.SessionTTL)
		defer registry.Close()
		go registry.Run(ctx, 0)

		handler := web.New(registry, web.Options{
			MaxUploadBytes: cfg.MaxUploadBytes,
			RequestTimeout: cfg.RequestTimeout,
		})
		srv := server.New(server.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, handler)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.WithError(err).Warn("serve: shutdown")
			}
		}()

		fmt.Fprintf(os.Stderr, "palmguru %s starting on http://%s\n", Version, srv.Addr())
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", cfg.Provider, analyzer.Model())
		fmt.Fprintf(os.Stderr, "  Camera: %s\n", cameraDescription(cfg.CameraEnabled, cfg.CameraDevice))

		return srv.Start()
	},
}

func cameraDescription(enabled bool, device int) string {
	if !enabled {
		return "disabled (upload only)"
	}
	return fmt.Sprintf("device %d", device)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
