package config

import "time"

// Option mutates a single setting. Invalid values are ignored.
type Option func(*Config)

// Configure applies only the supplied options. It is meant for suite setup,
// not for use while tests are running.
func (c *Config) Configure(opts ...Option) *Config {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// WithTimeout sets the default timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.DefaultTimeout = timeout
		}
	}
}

// WithTimeouts sets every timeout tier at once; non-positive tiers are left unchanged.
func WithTimeouts(def, short, long, animation time.Duration) Option {
	return func(c *Config) {
		WithTimeout(def)(c)
		if short > 0 {
			c.ShortTimeout = short
		}
		if long > 0 {
			c.LongTimeout = long
		}
		if animation > 0 {
			c.AnimationTimeout = animation
		}
	}
}

// WithEnvironment sets the target environment; unknown names fall back to the default.
func WithEnvironment(name string) Option {
	return func(c *Config) {
		c.Environment, _ = ParseEnvironment(name)
	}
}

// WithPollInterval sets the condition poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithRetry sets the retry policy.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(c *Config) {
		if maxAttempts > 0 {
			c.MaxRetries = maxAttempts
		}
		if delay >= 0 {
			c.RetryDelay = delay
		}
	}
}

// WithArtifactDir moves artifacts and the metrics file under dir.
func WithArtifactDir(dir string) Option {
	return func(c *Config) {
		if dir == "" {
			return
		}
		c.ArtifactDir = dir
		c.MetricsPath = dir + "/metrics.prom"
	}
}

// WithScreenshots sets the screenshot policy.
func WithScreenshots(onFailure, onSuccess bool) Option {
	return func(c *Config) {
		c.ScreenshotOnFailure = onFailure
		c.ScreenshotOnSuccess = onSuccess
	}
}

// WithResetOnLaunch toggles state reset when the app is launched.
func WithResetOnLaunch(reset bool) Option {
	return func(c *Config) {
		c.ResetOnLaunch = reset
	}
}

// WithVerbose forces debug logging.
func WithVerbose(verbose bool) Option {
	return func(c *Config) {
		c.Verbose = verbose
		if verbose {
			c.LogLevel = "debug"
		}
	}
}
