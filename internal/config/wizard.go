package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .palmguru.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to PalmGuru! Let's configure your reader.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select vision model provider",
		Items: []string{"google", "genai", "openai", "openrouter", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   (fast and cheap)",
			"normal (balanced)",
			"max    (most detailed reading)",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Quality = quality
	cfg.Model = GetModel(provider, quality)

	// 3. Listen port.
	portPrompt := promptui.Prompt{
		Label:    "Port for the web reader",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 4. Camera.
	cameraPrompt := promptui.Select{
		Label: "Use a local camera for live capture?",
		Items: []string{"yes", "no"},
	}
	cameraIdx, _, err := cameraPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("camera selection: %w", err)
	}
	cfg.CameraEnabled = cameraIdx == 0

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment or .env before running palmguru.\n", envVar)
	}

	if err := cfg.Save(DefaultConfigPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultConfigPath)
	return cfg, nil
}

func validatePort(s string) error {
	p, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if p < 0 || p > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	return nil
}
