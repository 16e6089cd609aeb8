package internal

import "github.com/starford/munin/internal/analyze"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	analyzer analyze.Analyzer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithAnalyzer overrides the OpenAI-backed analyzer. Tests use this to
// run the full pipeline against a deterministic stub.
func WithAnalyzer(an analyze.Analyzer) Option {
	return func(a *application) {
		a.analyzer = an
	}
}
