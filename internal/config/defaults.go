package config

import "time"

// qualityPresets maps each provider and tier to a vision-capable model.
var qualityPresets = map[ProviderType]map[QualityTier]string{
	ProviderGoogle: {
		QualityLite:   "gemini-2.5-flash-lite",
		QualityNormal: "gemini-2.5-flash-image",
		QualityMax:    "gemini-2.5-pro",
	},
	ProviderGenAI: {
		QualityLite:   "gemini-2.5-flash-lite",
		QualityNormal: "gemini-2.5-flash-image",
		QualityMax:    "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		QualityLite:   "gpt-4o-mini",
		QualityNormal: "gpt-4o",
		QualityMax:    "gpt-4o",
	},
	ProviderOpenRouter: {
		QualityLite:   "google/gemini-2.5-flash-lite",
		QualityNormal: "google/gemini-2.5-flash",
		QualityMax:    "google/gemini-2.5-pro",
	},
	ProviderAnthropic: {
		QualityLite:   "claude-haiku-4-5-20251001",
		QualityNormal: "claude-sonnet-4-5-20250929",
		QualityMax:    "claude-sonnet-4-5-20250929",
	},
	ProviderOllama: {
		QualityLite:   "moondream",
		QualityNormal: "llava",
		QualityMax:    "llava:34b",
	},
}

// DefaultConfigPath is where init writes and commands read the config.
const DefaultConfigPath = ".palmguru.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-2.5-flash-image",
		Quality:           QualityNormal,
		MaxOutputTokens:   1024,
		Host:              "127.0.0.1",
		Port:              8080,
		MaxUploadBytes:    10 << 20,
		CameraEnabled:     true,
		CameraDevice:      0,
		SessionTTL:        30 * time.Minute,
		CopyFeedbackDelay: 3 * time.Second,
		RequestTimeout:    60 * time.Second,
		LogLevel:          "info",
	}
}

// GetModel returns the preset model for the given provider and tier.
// Returns the normal Google model if the combination is not found.
func GetModel(provider ProviderType, tier QualityTier) string {
	if tiers, ok := qualityPresets[provider]; ok {
		if model, ok := tiers[tier]; ok {
			return model
		}
	}
	return qualityPresets[ProviderGoogle][QualityNormal]
}
