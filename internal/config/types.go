package config

import "time"

// QualityTier trades reading quality against speed and cost.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies a vision-capable model provider.
type ProviderType string

const (
	ProviderGoogle     ProviderType = "google"
	ProviderGenAI      ProviderType = "genai"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the palmguru configuration, corresponding to .palmguru.yml.
// Durations are written as strings such as "30m"; see MarshalYAML.
type Config struct {
	Provider        ProviderType `yaml:"provider" koanf:"provider"`
	Model           string       `yaml:"model" koanf:"model"`
	Quality         QualityTier  `yaml:"quality" koanf:"quality"`
	MaxOutputTokens int          `yaml:"max_output_tokens" koanf:"max_output_tokens"`
	RateLimitRPM    int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`

	Host            string `yaml:"host" koanf:"host"`
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes" koanf:"max_upload_bytes"`

	CameraEnabled bool `yaml:"camera_enabled" koanf:"camera_enabled"`
	CameraDevice  int  `yaml:"camera_device" koanf:"camera_device"`

	// HostClipboard also copies readings to the clipboard of the machine
	// running the server, not only the browser's.
	HostClipboard bool `yaml:"host_clipboard" koanf:"host_clipboard"`

	SessionTTL        time.Duration `yaml:"-" koanf:"session_ttl"`
	CopyFeedbackDelay time.Duration `yaml:"-" koanf:"copy_feedback_delay"`
	RequestTimeout    time.Duration `yaml:"-" koanf:"request_timeout"`

	LogLevel string `yaml:"log_level" koanf:"log_level"`
}

// MarshalYAML writes durations in their string form so the file stays
// readable and loads back through koanf's duration hook.
func (c Config) MarshalYAML() (interface{}, error) {
	type plain Config
	return struct {
		plain             `yaml:",inline"`
		SessionTTL        string `yaml:"session_ttl"`
		CopyFeedbackDelay string `yaml:"copy_feedback_delay"`
		RequestTimeout    string `yaml:"request_timeout"`
	}{
		plain:             plain(c),
		SessionTTL:        c.SessionTTL.String(),
		CopyFeedbackDelay: c.CopyFeedbackDelay.String(),
		RequestTimeout:    c.RequestTimeout.String(),
	}, nil
}
