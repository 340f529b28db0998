package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

// DiarizationSettings holds what the diarization provider needs
type DiarizationSettings struct {
	BaseURL     string        `validate:"required,url"`
	Model       string        `validate:"required"`
	Token       string        `validate:"omitempty"`
	Timeout     time.Duration `validate:"gt=0"`
	NumSpeakers int           `validate:"gte=0"`
	MinSpeakers int           `validate:"gte=0"`
	MaxSpeakers int           `validate:"gte=0"`
}

var settingsValidator = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("merge.gap_tolerance", 5.0)
	v.SetDefault("output.format", "text")
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.format", "console")
	v.SetDefault("dia.base_url", "http://localhost:8388")
	v.SetDefault("dia.model", "pyannote/speaker-diarization-3.1")
	v.SetDefault("dia.token", "")
	v.SetDefault("dia.timeout", "10m")
	v.SetDefault("dia.num_speakers", 0)
	v.SetDefault("dia.min_speakers", 0)
	v.SetDefault("dia.max_speakers", 0)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("DIAMIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Hugging Face tooling conventionally reads the access token from HF_TOKEN
	v.BindEnv("dia.token", "DIAMIX_DIA_TOKEN", "HF_TOKEN")
}

// NewConfiguration creates a new Configuration instance with default settings
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration instance from a config file,
// with environment variables taking precedence over file values
func NewConfigurationFromFile(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	bindEnv(v)

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnv creates a Configuration instance that reads from environment variables
func NewConfigurationFromEnv() (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	return &Configuration{viper: v}, nil
}

// Load picks the file-backed configuration when configFile is set, otherwise the environment one
func Load(configFile string) (*Configuration, error) {
	if configFile != "" {
		return NewConfigurationFromFile(configFile)
	}
	return NewConfigurationFromEnv()
}

// LoadDotEnv loads KEY=value pairs from a .env file into the process environment.
// Variables that are already set are not overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Set overrides a single key, e.g. from a command line flag
func (c *Configuration) Set(key string, value interface{}) {
	c.viper.Set(key, value)
}

// GetGapTolerance returns the maximum gap in seconds between fused entries
func (c *Configuration) GetGapTolerance() float64 {
	return c.viper.GetFloat64("merge.gap_tolerance")
}

// GetOutputFormat returns the configured output format name
func (c *Configuration) GetOutputFormat() string {
	return c.viper.GetString("output.format")
}

// GetVerbose returns whether debug diagnostics are enabled
func (c *Configuration) GetVerbose() bool {
	return c.viper.GetBool("log.verbose")
}

// GetLogFormat returns the diagnostic log encoding, console or json
func (c *Configuration) GetLogFormat() string {
	return c.viper.GetString("log.format")
}

// GetDiarizationBaseURL returns the diarization sidecar URL
func (c *Configuration) GetDiarizationBaseURL() string {
	return c.viper.GetString("dia.base_url")
}

// GetDiarizationModel returns the diarization pipeline identifier
func (c *Configuration) GetDiarizationModel() string {
	return c.viper.GetString("dia.model")
}

// GetDiarizationToken returns the access token for the diarization model
func (c *Configuration) GetDiarizationToken() string {
	return c.viper.GetString("dia.token")
}

// GetDiarizationTimeout returns the request timeout for a diarization call
func (c *Configuration) GetDiarizationTimeout() time.Duration {
	return c.viper.GetDuration("dia.timeout")
}

// Validate checks the merge-related settings
func (c *Configuration) Validate() error {
	if c.GetGapTolerance() < 0 {
		return fmt.Errorf("merge.gap_tolerance cannot be negative")
	}

	switch strings.ToLower(c.GetOutputFormat()) {
	case "text", "txt", "json", "yaml", "yml":
	default:
		return fmt.Errorf("output.format must be one of [text, json, yaml] (got: %s)", c.GetOutputFormat())
	}

	switch strings.ToLower(c.GetLogFormat()) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be one of [console, json] (got: %s)", c.GetLogFormat())
	}

	return nil
}

// DiarizationSettings returns the validated diarization provider settings
func (c *Configuration) DiarizationSettings() (DiarizationSettings, error) {
	settings := DiarizationSettings{
		BaseURL:     c.GetDiarizationBaseURL(),
		Model:       c.GetDiarizationModel(),
		Token:       c.GetDiarizationToken(),
		Timeout:     c.GetDiarizationTimeout(),
		NumSpeakers: c.viper.GetInt("dia.num_speakers"),
		MinSpeakers: c.viper.GetInt("dia.min_speakers"),
		MaxSpeakers: c.viper.GetInt("dia.max_speakers"),
	}

	if err := settingsValidator.Struct(settings); err != nil {
		return DiarizationSettings{}, fmt.Errorf("invalid diarization settings: %w", err)
	}

	if settings.MaxSpeakers > 0 && settings.MinSpeakers > settings.MaxSpeakers {
		return DiarizationSettings{}, fmt.Errorf("dia.min_speakers (%d) cannot exceed dia.max_speakers (%d)",
			settings.MinSpeakers, settings.MaxSpeakers)
	}

	return settings, nil
}
