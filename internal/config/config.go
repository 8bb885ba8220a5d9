package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	Port string

	MistralKey string
	GroqKey    string
	OpenAIKey  string

	RedisURL string

	TempAudioDir string
	YtDlpPath    string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	RecipeGeneration RecipeGenerationConfig
	Transcription    TranscriptionConfig
	Janitor          JanitorConfig
	Cache            CacheConfig
}

type RecipeGenerationConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type TranscriptionConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type JanitorConfig struct {
	Interval string        `yaml:"interval"`
	MaxAge   time.Duration `yaml:"max_age"`
}

// CacheConfig controls the extraction cache. It is only used when
// REDIS_URL is set.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		Port:                     os.Getenv("PORT"),
		MistralKey:               os.Getenv("MISTRAL_API_KEY"),
		GroqKey:                  os.Getenv("GROQ_API_KEY"),
		OpenAIKey:                os.Getenv("OPENAI_API_KEY"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		TempAudioDir:             os.Getenv("TEMP_AUDIO_DIR"),
		YtDlpPath:                os.Getenv("YT_DLP_PATH"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		RecipeGeneration RecipeGenerationConfig `yaml:"recipe_generation"`
		Transcription    TranscriptionConfig    `yaml:"transcription"`
		Janitor          JanitorConfig          `yaml:"janitor"`
		Cache            CacheConfig            `yaml:"cache"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	rg := yamlConfig.RecipeGeneration
	if rg.Provider != "" {
		c.RecipeGeneration.Provider = rg.Provider
	}
	if rg.Model != "" {
		c.RecipeGeneration.Model = rg.Model
	}
	if rg.MaxTokens > 0 {
		c.RecipeGeneration.MaxTokens = rg.MaxTokens
	}
	if rg.Temperature > 0 {
		c.RecipeGeneration.Temperature = rg.Temperature
	}

	if yamlConfig.Transcription.Provider != "" {
		c.Transcription.Provider = yamlConfig.Transcription.Provider
	}
	if yamlConfig.Transcription.Model != "" {
		c.Transcription.Model = yamlConfig.Transcription.Model
	}

	if yamlConfig.Janitor.Interval != "" {
		c.Janitor.Interval = yamlConfig.Janitor.Interval
	}
	if yamlConfig.Janitor.MaxAge > 0 {
		c.Janitor.MaxAge = yamlConfig.Janitor.MaxAge
	}
	if yamlConfig.Cache.TTL > 0 {
		c.Cache.TTL = yamlConfig.Cache.TTL
	}

	return nil
}

// SetDefaults fills every field left empty by the environment and the YAML overlay.
func (c *Config) SetDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.ServiceName == "" {
		c.ServiceName = "recipegen"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "1.0.0"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.TempAudioDir == "" {
		c.TempAudioDir = filepath.Join(os.TempDir(), "recipegen")
	}
	if c.YtDlpPath == "" {
		c.YtDlpPath = "yt-dlp"
	}

	c.SetRecipeGenerationDefaults()
	c.SetTranscriptionDefaults()

	if c.Janitor.Interval == "" {
		c.Janitor.Interval = "@every 15m"
	}
	if c.Janitor.MaxAge == 0 {
		c.Janitor.MaxAge = time.Hour
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
}

func (c *Config) SetRecipeGenerationDefaults() {
	if c.RecipeGeneration.Provider == "" {
		c.RecipeGeneration.Provider = "mistral"
	}
	if c.RecipeGeneration.MaxTokens == 0 {
		c.RecipeGeneration.MaxTokens = 1000
	}
	if c.RecipeGeneration.Temperature == 0 {
		c.RecipeGeneration.Temperature = 0.7
	}
}

func (c *Config) SetTranscriptionDefaults() {
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "groq"
	}
}

// RecipeAPIKey returns the key for the configured recipe generation provider.
func (c *Config) RecipeAPIKey() string {
	switch strings.ToLower(c.RecipeGeneration.Provider) {
	case "groq":
		return c.GroqKey
	case "openai":
		return c.OpenAIKey
	default:
		return c.MistralKey
	}
}

// TranscriptionAPIKey returns the key for the configured transcription provider.
func (c *Config) TranscriptionAPIKey() string {
	if strings.ToLower(c.Transcription.Provider) == "openai" {
		return c.OpenAIKey
	}
	return c.GroqKey
}

// ValidateWorker checks the settings only the janitor worker needs.
func (c *Config) ValidateWorker() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	return nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.RecipeGeneration.Provider) {
	case "mistral", "groq", "openai":
	default:
		return fmt.Errorf("unknown recipe generation provider %q", c.RecipeGeneration.Provider)
	}
	switch strings.ToLower(c.Transcription.Provider) {
	case "groq", "openai":
	default:
		return fmt.Errorf("unknown transcription provider %q", c.Transcription.Provider)
	}
	if c.Janitor.MaxAge < 0 {
		return fmt.Errorf("janitor max_age must not be negative")
	}
	return nil
}
