package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/palmguru/palmguru/internal/analysis"
	"github.com/palmguru/palmguru/internal/capture"
	"github.com/palmguru/palmguru/internal/config"
	"github.com/palmguru/palmguru/internal/llm"
	"github.com/palmguru/palmguru/internal/logging"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `palmguru init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	// LOG_LEVEL in the environment wins over the file.
	if os.Getenv("LOG_LEVEL") == "" && !verbose {
		logging.SetLevel(cfg.LogLevel)
	}
	return cfg, nil
}

// createAnalyzerFromConfig builds the provider chain and the analysis
// client on top of it.
func createAnalyzerFromConfig(ctx context.Context, cfg *config.Config) (*analysis.Client, error) {
	provider, err := llm.NewProvider(ctx, string(cfg.Provider), cfg.Model)
	if err != nil {
		if env := config.APIKeyEnvVar(cfg.Provider); env != "" && os.Getenv(env) == "" {
			return nil, fmt.Errorf("creating %s provider: %w\nSet %s in your environment or .env", cfg.Provider, err, env)
		}
		return nil, fmt.Errorf("creating %s provider: %w", cfg.Provider, err)
	}
	provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	return analysis.NewClient(provider, cfg.Model, cfg.MaxOutputTokens), nil
}

// createCameraFromConfig returns the host camera, or one that is never
// available when the camera is disabled.
func createCameraFromConfig(cfg *config.Config) capture.Camera {
	if !cfg.CameraEnabled {
		return capture.UnavailableCamera{}
	}
	return capture.NewGoCVCamera(cfg.CameraDevice)
}
