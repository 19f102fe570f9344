package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"webvitals/pkg/pagespeed"
	"webvitals/pkg/pagespeed/psiapi"
	"webvitals/pkg/serrors"
)

// Report schemas accepted by Audit.Schema.
const (
	// SchemaFixed writes every known column regardless of record shape.
	SchemaFixed = "fixed"
	// SchemaFirstRecord derives the header from the first record only.
	SchemaFirstRecord = "first-record"
)

// PSI backends accepted by PSI.Backend.
const (
	// BackendREST calls the REST endpoint directly and decodes the body as a stream.
	BackendREST = "rest"
	// BackendGoogle goes through the generated Google API client.
	BackendGoogle = "google"
)

// Config represents the application configuration structure.
// It contains settings for the environment, the PageSpeed Insights API, the
// audit run itself and optional metrics output.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// PSI contains the PageSpeed Insights API settings
	PSI struct {
		// APIKey is the Google API key sent with every request
		APIKey string `env:"PSI_API_KEY" yaml:"apiKey"`
		// Endpoint is the runPagespeed URL
		Endpoint string `env:"PSI_ENDPOINT" env-default:"https://www.googleapis.com/pagespeedonline/v5/runPagespeed" yaml:"endpoint"` //nolint: lll
		// Backend selects the client implementation (rest or google)
		Backend string `env:"PSI_BACKEND" env-default:"rest" yaml:"backend"`
		// Strategy is the device profile to emulate (mobile or desktop)
		Strategy string `env:"PSI_STRATEGY" env-default:"mobile" yaml:"strategy"`
		// Timeout bounds a single API call; zero waits indefinitely
		Timeout time.Duration `env:"PSI_TIMEOUT" env-default:"0s" yaml:"timeout"`
	} `yaml:"psi"`

	// Audit contains the settings of an audit run
	Audit struct {
		// Input is the path of the newline-delimited URL list
		Input string `env:"AUDIT_INPUT" env-default:"urls.txt" yaml:"input"`
		// Output is the path of the CSV report
		Output string `env:"AUDIT_OUTPUT" env-default:"core_web_vitals_report.csv" yaml:"output"`
		// Delay is the pause after each URL, to stay under the API rate limit
		Delay time.Duration `env:"AUDIT_DELAY" env-default:"1s" yaml:"delay"`
		// Schema selects the report header layout (fixed or first-record)
		Schema string `env:"AUDIT_SCHEMA" env-default:"fixed" yaml:"schema"`
	} `yaml:"audit"`

	// Metrics contains the optional run metrics settings
	Metrics struct {
		// File is the Prometheus textfile written at the end of a run; empty disables it
		File string `env:"METRICS_FILE" yaml:"file"`
	} `yaml:"metrics"`
}

// Load receives the path for yaml config file and returns a filled Config
// struct. A missing file is not an error: the configuration then comes from
// environment variables and defaults alone.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Config{}
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings an audit run depends on.
func (c *Config) Validate() error {
	if c.PSI.APIKey == "" {
		return serrors.With(serrors.ErrBadRequest, "psi.apiKey (PSI_API_KEY) is required")
	}
	if c.PSI.Backend != BackendREST && c.PSI.Backend != BackendGoogle {
		return serrors.With(serrors.ErrBadRequest, "unknown psi.backend %q", c.PSI.Backend)
	}
	if !pagespeed.Strategy(c.PSI.Strategy).Valid() {
		return serrors.With(serrors.ErrBadRequest, "unknown psi.strategy %q", c.PSI.Strategy)
	}
	if c.PSI.Timeout < 0 {
		return serrors.With(serrors.ErrBadRequest, "psi.timeout must not be negative")
	}
	if c.Audit.Delay < 0 {
		return serrors.With(serrors.ErrBadRequest, "audit.delay must not be negative")
	}
	if c.Audit.Schema != SchemaFixed && c.Audit.Schema != SchemaFirstRecord {
		return serrors.With(serrors.ErrBadRequest, "unknown audit.schema %q", c.Audit.Schema)
	}

	return nil
}

// Endpoint returns the configured API endpoint, or the public one.
func (c *Config) Endpoint() string {
	if c.PSI.Endpoint == "" {
		return psiapi.DefaultEndpoint
	}

	return c.PSI.Endpoint
}
