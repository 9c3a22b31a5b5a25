package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for missing or inconsistent values.
// It returns all problems found so the operator can fix them in one pass.
func (c *Config) Validate() []error {
	var errs []error

	if c.API.Endpoint == "" {
		errs = append(errs, fmt.Errorf("api.endpoint is required"))
	} else if u, err := url.Parse(c.API.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.endpoint %q is not a valid URL", c.API.Endpoint))
	}

	if c.API.KeyID == "" {
		errs = append(errs, fmt.Errorf("api.key_id is required (set API_KEY or the config value)"))
	}
	if c.API.SecretKey == "" {
		errs = append(errs, fmt.Errorf("api.secret_key is required (set API_SECRET or the config value)"))
	}

	if c.Files.Root == "" {
		errs = append(errs, fmt.Errorf("files.root is required"))
	}

	if c.Export.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("export.concurrency must not be negative, got %d", c.Export.Concurrency))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of json, text", c.Logging.Format))
	}

	return errs
}
