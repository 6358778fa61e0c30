package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.LabelAPI.validate(); err != nil {
		return fmt.Errorf("label_api: %w", err)
	}

	return nil
}

func (l *LabelAPIConfig) validate() error {
	if l.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be >= 1 (got %d)", l.RetryAttempts)
	}
	if l.BreakerWindow == 0 {
		return fmt.Errorf("breaker_window must be > 0")
	}
	if l.BreakerRate <= 0 || l.BreakerRate > 1 {
		return fmt.Errorf("breaker_rate must be in (0, 1] (got %v)", l.BreakerRate)
	}
	if l.BreakerInterval <= 0 {
		return fmt.Errorf("breaker_interval must be > 0 (got %v)", l.BreakerInterval)
	}
	if l.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be >= 1 (got %d)", l.MaxConcurrent)
	}
	if l.BatchParallel < 1 {
		return fmt.Errorf("batch_parallel must be >= 1 (got %d)", l.BatchParallel)
	}
	return nil
}
