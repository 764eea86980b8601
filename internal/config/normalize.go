package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeOutput()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeNotifications()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	if value, ok := os.LookupEnv(envTranscoder); ok && strings.TrimSpace(value) != "" {
		c.Tools.Transcoder = value
	}
	if value, ok := os.LookupEnv(envSegmenter); ok && strings.TrimSpace(value) != "" {
		c.Tools.Segmenter = value
	}
	c.Tools.Transcoder = strings.TrimSpace(c.Tools.Transcoder)
	if c.Tools.Transcoder == "" {
		c.Tools.Transcoder = defaultTranscoder
	}
	c.Tools.Segmenter = strings.TrimSpace(c.Tools.Segmenter)
	if c.Tools.Segmenter == "" {
		c.Tools.Segmenter = defaultSegmenter
	}

	dirs := make([]string, 0, len(c.Tools.SearchDirs))
	seen := make(map[string]struct{}, len(c.Tools.SearchDirs))
	for _, dir := range c.Tools.SearchDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		// "." stays relative so it follows the directory the CLI runs from.
		if dir != defaultSearchDirWorkingDir {
			dir = filepath.Clean(dir)
		}
		if _, exists := seen[dir]; exists {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	if len(dirs) == 0 {
		dirs = defaultSearchDirs()
	}
	c.Tools.SearchDirs = dirs

	c.Tools.TranscoderArgs = trimArgs(c.Tools.TranscoderArgs)
	c.Tools.SegmenterArgs = trimArgs(c.Tools.SegmenterArgs)
	if c.Tools.TargetDuration <= 0 {
		c.Tools.TargetDuration = defaultTargetDuration
	}
	if c.Tools.TimeoutSeconds < 0 {
		c.Tools.TimeoutSeconds = 0
	}
	if c.Tools.MaxOutputBytes <= 0 {
		c.Tools.MaxOutputBytes = defaultMaxOutputBytes
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Aspect = strings.ToLower(strings.TrimSpace(c.Output.Aspect))
	if c.Output.Aspect == "" {
		c.Output.Aspect = defaultAspect
	}
	c.Output.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Output.FailurePolicy))
	if c.Output.FailurePolicy == "" {
		c.Output.FailurePolicy = defaultFailurePolicy
	}
	tiers := make([]string, 0, len(c.Output.Tiers))
	for _, tier := range c.Output.Tiers {
		if tier = strings.ToLower(strings.TrimSpace(tier)); tier != "" {
			tiers = append(tiers, tier)
		}
	}
	c.Output.Tiers = tiers
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv(envNtfyTopic); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeMetrics() error {
	var err error
	c.Metrics.TextfilePath = strings.TrimSpace(c.Metrics.TextfilePath)
	if c.Metrics.TextfilePath == "" {
		if value, ok := os.LookupEnv(envMetricsTextfile); ok {
			c.Metrics.TextfilePath = strings.TrimSpace(value)
		}
	}
	if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			out = append(out, arg)
		}
	}
	return out
}
