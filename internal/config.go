package internal

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	OpenAI OpenAIConfig      `yaml:"openai"`
	Review ReviewConfig      `yaml:"review"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.OpenAI.Validate(); err != nil {
		return err
	}
	return c.Review.Validate()
}

// ApplyEnv fills config fields from plain environment variables so the
// CLI works with nothing but a .env file. Env values win over the file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("VAULT_PATH"); v != "" {
		c.Vault.Path = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the vault location and its internal layout. The
// subdirectory paths are relative to the vault root.
type VaultConfig struct {
	Path         string   `yaml:"path"`
	Observations string   `yaml:"observations"`
	Reviews      string   `yaml:"reviews"`
	Templates    string   `yaml:"templates"`
	Ignore       []string `yaml:"ignore"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Observations, validation.Required),
		validation.Field(&c.Reviews, validation.Required),
	)
}

// OpenAIConfig holds the text-generation client configuration. The API
// key is usually supplied via ${OPENAI_API_KEY} expansion or .env.
type OpenAIConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Temperature       float64 `yaml:"temperature"`
	MaxResponseTokens int     `yaml:"max_response_tokens"`
	MaxNoteTokens     int     `yaml:"max_note_tokens"`
}

// Validate validates the OpenAI configuration. The key is deliberately
// not required here: commands that never call the model (tidy, links,
// init, backup) must work without one.
func (c *OpenAIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxResponseTokens, validation.Min(0)),
		validation.Field(&c.MaxNoteTokens, validation.Min(0)),
	)
}

// ReviewConfig tunes the review pipeline.
type ReviewConfig struct {
	// DefaultDays is the window used when the caller gives none.
	DefaultDays int `yaml:"default_days"`
	// Concurrency is the number of parallel analyzer calls; 1 keeps
	// the reference sequential behavior.
	Concurrency int `yaml:"concurrency"`
	// CallTimeoutSeconds bounds each analyzer call; 0 disables.
	CallTimeoutSeconds int `yaml:"call_timeout_seconds"`
}

// CallTimeout returns the per-call timeout as a duration.
func (c *ReviewConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// Validate validates the review configuration.
func (c *ReviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultDays, validation.Required, validation.Min(1)),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.CallTimeoutSeconds, validation.Min(0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
// The vault layout defaults mirror a PARA-organised Obsidian vault.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:         "./vault",
			Observations: "3-Areas/Mind-Body-System/observations",
			Reviews:      "3-Areas/Mind-Body-System/reviews",
			Templates:    "templates",
			Ignore:       []string{".obsidian/**", "templates/**"},
		},
		OpenAI: OpenAIConfig{
			Model:             "gpt-4o",
			Temperature:       0.7,
			MaxResponseTokens: 500,
			MaxNoteTokens:     6000,
		},
		Review: ReviewConfig{
			DefaultDays:        7,
			Concurrency:        1,
			CallTimeoutSeconds: 60,
		},
	}
}
