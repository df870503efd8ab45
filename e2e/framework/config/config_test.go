package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name            string
		env             map[string]string
		wantEnvironment Environment
		wantTimeout     time.Duration
		wantVerbose     bool
		wantRetries     int
		wantTags        []string
	}{
		{
			name:            "defaults",
			env:             map[string]string{},
			wantEnvironment: EnvironmentDevelopment,
			wantTimeout:     10 * time.Second,
			wantRetries:     3,
		},
		{
			name: "recognized overrides",
			env: map[string]string{
				"TEST_ENVIRONMENT": "Staging",
				"DEFAULT_TIMEOUT":  "2.5",
				"VERBOSE_LOGGING":  "TRUE",
				"RETRY_COUNT":      "5",
				"TEST_TAGS":        "smoke, checkout,,",
			},
			wantEnvironment: EnvironmentStaging,
			wantTimeout:     2500 * time.Millisecond,
			wantVerbose:     true,
			wantRetries:     5,
			wantTags:        []string{"smoke", "checkout"},
		},
		{
			name: "malformed overrides keep defaults",
			env: map[string]string{
				"TEST_ENVIRONMENT": "moon",
				"DEFAULT_TIMEOUT":  "soon",
				"VERBOSE_LOGGING":  "yes",
				"RETRY_COUNT":      "many",
			},
			wantEnvironment: EnvironmentDevelopment,
			wantTimeout:     10 * time.Second,
			wantRetries:     3,
		},
		{
			name:            "non-positive timeout ignored",
			env:             map[string]string{"DEFAULT_TIMEOUT": "-1"},
			wantEnvironment: EnvironmentDevelopment,
			wantTimeout:     10 * time.Second,
			wantRetries:     3,
		},
		{
			name:            "infinite timeout ignored",
			env:             map[string]string{"DEFAULT_TIMEOUT": "Inf"},
			wantEnvironment: EnvironmentDevelopment,
			wantTimeout:     10 * time.Second,
			wantRetries:     3,
		},
		{
			name:            "overflowing timeout ignored",
			env:             map[string]string{"DEFAULT_TIMEOUT": "1e300"},
			wantEnvironment: EnvironmentDevelopment,
			wantTimeout:     10 * time.Second,
			wantRetries:     3,
		},
		{
			name:            "sub-nanosecond timeout ignored",
			env:             map[string]string{"DEFAULT_TIMEOUT": "1e-12"},
			wantEnvironment: EnvironmentDevelopment,
			wantTimeout:     10 * time.Second,
			wantRetries:     3,
		},
		{
			name:            "NaN timeout ignored",
			env:             map[string]string{"DEFAULT_TIMEOUT": "NaN"},
			wantEnvironment: EnvironmentDevelopment,
			wantTimeout:     10 * time.Second,
			wantRetries:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv(lookupFrom(tt.env))
			assert.Equal(t, tt.wantEnvironment, cfg.Environment)
			assert.Equal(t, tt.wantTimeout, cfg.DefaultTimeout)
			assert.Equal(t, tt.wantVerbose, cfg.Verbose)
			assert.Equal(t, tt.wantRetries, cfg.MaxRetries)
			assert.Equal(t, tt.wantTags, cfg.Tags)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestFromEnvVerboseForcesDebug(t *testing.T) {
	cfg := FromEnv(lookupFrom(map[string]string{"VERBOSE_LOGGING": "true", "UI_E2E_LOG_LEVEL": "error"}))
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfigureOnlyTouchesSuppliedFields(t *testing.T) {
	cfg := Default()
	before := cfg.Clone()

	cfg.Configure(WithTimeout(4*time.Second), WithEnvironment("production"))

	assert.Equal(t, 4*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, EnvironmentProduction, cfg.Environment)
	assert.Equal(t, before.ShortTimeout, cfg.ShortTimeout)
	assert.Equal(t, before.MaxRetries, cfg.MaxRetries)
	assert.Equal(t, before.ArtifactDir, cfg.ArtifactDir)
}

func TestConfigureIgnoresInvalidValues(t *testing.T) {
	cfg := Default()
	cfg.Configure(WithTimeout(0), WithTimeouts(-1, -1, -1, -1), WithEnvironment("mars"), WithPollInterval(0), WithRetry(0, -1))

	assert.Equal(t, 10*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, 3*time.Second, cfg.ShortTimeout)
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := Default()
	cfg.ShortTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TEST_ENVIRONMENT", "staging")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	cfg, err := Load(fs, []string{"--environment=test", "--default-timeout=7s", "--tags=smoke,login", "--artifact-dir=/tmp/run"})
	require.NoError(t, err)

	assert.Equal(t, EnvironmentTest, cfg.Environment)
	assert.Equal(t, 7*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, []string{"smoke", "login"}, cfg.Tags)
	assert.Equal(t, filepath.Join("/tmp/run", "metrics.prom"), cfg.MetricsPath)
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	cfg.Tags = []string{"smoke"}
	clone := cfg.Clone()
	clone.Tags[0] = "regression"
	clone.Configure(WithTimeout(time.Minute))

	assert.Equal(t, "smoke", cfg.Tags[0])
	assert.Equal(t, 10*time.Second, cfg.DefaultTimeout)
}

func TestLaunchSurface(t *testing.T) {
	cfg := Default().Configure(WithEnvironment("staging"), WithResetOnLaunch(true))

	assert.Equal(t, []string{"--uitesting", "--environment=staging", "--disable-animations", "--reset-state"}, cfg.LaunchArguments())
	assert.Equal(t, map[string]string{
		"UI_TEST_RUNNING":    "1",
		"APP_ENVIRONMENT":    "staging",
		"DISABLE_ANIMATIONS": "1",
	}, cfg.LaunchEnvironment())

	cfg.Configure(WithResetOnLaunch(false))
	assert.NotContains(t, cfg.LaunchArguments(), LaunchArgResetState)
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("UI_E2E_DOTENV_PROBE=found\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("UI_E2E_DOTENV_PROBE") })

	path, err := LoadDotEnv(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".env"), path)
	assert.Equal(t, "found", os.Getenv("UI_E2E_DOTENV_PROBE"))
}
