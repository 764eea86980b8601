package config

import (
	"errors"
	"fmt"
	"strings"

	"hlsmaker/internal/preset"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.Transcoder) == "" {
		return errors.New("tools.transcoder must be set")
	}
	if strings.TrimSpace(c.Tools.Segmenter) == "" {
		return errors.New("tools.segmenter must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"tools.target_duration":  c.Tools.TargetDuration,
		"tools.max_output_bytes": c.Tools.MaxOutputBytes,
	}); err != nil {
		return err
	}
	if c.Tools.TimeoutSeconds < 0 {
		return errors.New("tools.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, err := preset.ParseAspect(c.Output.Aspect); err != nil {
		return fmt.Errorf("output.aspect: %w", err)
	}
	switch c.Output.FailurePolicy {
	case FailurePolicyContinue, FailurePolicyHalt:
	default:
		return fmt.Errorf("output.failure_policy must be %q or %q, got %q", FailurePolicyContinue, FailurePolicyHalt, c.Output.FailurePolicy)
	}
	if len(c.Output.Tiers) > 0 {
		if _, errs := preset.ParseTiers(strings.Join(c.Output.Tiers, ",")); len(errs) > 0 {
			return fmt.Errorf("output.tiers: %w", errors.Join(errs...))
		}
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
