package config

import (
	"errors"
	"fmt"
	"strings"

	"promptchart/pkg/extract"
)

func (c *Config) Validate() error {
	// Model config
	switch c.Model.Provider {
	case "openai":
		if c.Model.OpenaiApiKey == "" {
			return errors.New("model.openai_api_key (or OPENAI_API_KEY) is required when model.provider is openai")
		}
	case "gemini":
		if c.Model.GoogleApiKey == "" {
			return errors.New("model.google_api_key (or GEMINI_API_KEY) is required when model.provider is gemini")
		}
	default:
		return fmt.Errorf("model.provider %q is not supported (use openai or gemini)", c.Model.Provider)
	}
	if c.Model.Name == "" {
		return errors.New("model.name is required")
	}
	if _, err := extract.ParseVariant(c.Model.Variant); err != nil {
		return fmt.Errorf("model.variant: %w", err)
	}
	if c.Model.Timeout <= 0 {
		return errors.New("model.timeout must be positive")
	}
	if c.Model.MaxInputChars <= 0 {
		return errors.New("model.max_input_chars must be a positive integer")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature (%v) must be between 0 and 2", c.Model.Temperature)
	}

	// Normalizer
	if c.Normalize.Tolerance < 0 {
		return errors.New("normalize.tolerance must not be negative")
	}

	// Server
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode)
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("server.cors_origins entry %q must be \"*\" or start with http:// or https://", origin)
		}
	}

	// Database config (optional)
	if c.Database.DSN != "" {
		switch c.Database.Driver {
		case "pgx", "sqlite3":
		default:
			return fmt.Errorf("database.driver %q is not supported (use pgx or sqlite3)", c.Database.Driver)
		}
	}

	// Worker config
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return errors.New("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}

	// Pricing config (optional, but if present, must be valid)
	for provider, models := range c.Pricing {
		if provider == "" {
			return errors.New("pricing contains an empty provider name")
		}
		for model, price := range models {
			if model == "" {
				return fmt.Errorf("pricing for provider '%s' contains an empty model name", provider)
			}
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}

	return nil
}
