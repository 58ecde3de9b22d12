package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/ojpilot/ojpilot/pkg/util"
)

const (
	DefaultEndpoint       = "https://api.opentransportdata.swiss/ojp20"
	DefaultRequestorRef   = "ojpilot"
	DefaultTimeoutSeconds = 30
)

// Config carries everything needed to talk to an OJP endpoint.
type Config struct {
	APIKey         string `yaml:"api_key"`
	Endpoint       string `yaml:"endpoint"`
	RequestorRef   string `yaml:"requestor_ref"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load builds a Config from defaults, an optional YAML file and the process
// environment, in that order of precedence. A .env file in the working
// directory is folded into the environment first if one exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment from .env file")
	}

	config := &Config{
		Endpoint:       DefaultEndpoint,
		RequestorRef:   DefaultRequestorRef,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}

	if path != "" {
		fileContents, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(fileContents, config); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	env := util.GetEnvironmentVariables()

	if value := env["OJP_API_KEY"]; value != "" {
		config.APIKey = value
	}
	if value := env["OJP_V2_ENDPOINT"]; value != "" {
		config.Endpoint = value
	}
	if value := env["DEFAULT_REQUESTOR_REF"]; value != "" {
		config.RequestorRef = value
	}
	if value := env["DEFAULT_TIMEOUT"]; value != "" {
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("DEFAULT_TIMEOUT must be a number of seconds, got %q", value)
		}
		config.TimeoutSeconds = seconds
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.APIKey == "" {
		log.Warn().Msg("No OJP_API_KEY set, requests to the live endpoint will be rejected")
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	parsed, err := url.Parse(c.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("endpoint %q is not a valid URL", c.Endpoint)
	}

	if c.RequestorRef == "" {
		return fmt.Errorf("requestor_ref is required")
	}

	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}

	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
