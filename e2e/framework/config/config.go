package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

// Environment is the target deployment the application under test talks to.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentStaging     Environment = "staging"
	EnvironmentProduction  Environment = "production"
	EnvironmentTest        Environment = "test"

	DefaultEnvironment = EnvironmentDevelopment
)

// Environments lists every recognized environment.
var Environments = []Environment{EnvironmentDevelopment, EnvironmentStaging, EnvironmentProduction, EnvironmentTest}

// ParseEnvironment normalizes a name; unrecognized names map to DefaultEnvironment.
func ParseEnvironment(value string) (Environment, bool) {
	candidate := Environment(strings.ToLower(strings.TrimSpace(value)))
	for _, env := range Environments {
		if env == candidate {
			return env, true
		}
	}
	return DefaultEnvironment, false
}

// Log collection modes.
const (
	LogCollectionNever   = "never"
	LogCollectionFailure = "failure"
	LogCollectionAlways  = "always"
)

// Driver kinds.
const (
	DriverSim = "sim"
	DriverRod = "rod"
)

// Config controls the UI automation framework.
type Config struct {
	RunID       string
	Environment Environment

	DefaultTimeout   time.Duration
	ShortTimeout     time.Duration
	LongTimeout      time.Duration
	AnimationTimeout time.Duration
	PollInterval     time.Duration

	MaxRetries int
	RetryDelay time.Duration

	ScreenshotOnFailure bool
	ScreenshotOnSuccess bool
	LogCollection       string
	ArtifactDir         string
	ResetOnLaunch       bool

	Verbose   bool
	CI        bool
	TestSuite string
	Tags      []string
	SpecDir   string
	Fixtures  string
	LogFormat string
	LogLevel  string

	MetricsEnabled bool
	MetricsPath    string

	DriverKind string
	AppURL     string
	BrowserBin string
	Headless   bool

	ObjectStoreProvider           string
	ObjectStoreBucket             string
	ObjectStorePrefix             string
	ObjectStoreRegion             string
	ObjectStoreEndpoint           string
	ObjectStoreAccessKey          string
	ObjectStoreSecretKey          string
	ObjectStoreSessionToken       string
	ObjectStoreS3PathStyle        bool
	ObjectStoreGCPCredentialsFile string
	ObjectStoreGCPCredentialsJSON string
	ObjectStoreAzureAccount       string
	ObjectStoreAzureKey           string
	ObjectStoreAzureEndpoint      string
	ObjectStoreAzureSASToken      string

	OTelEnabled     bool
	OTelEndpoint    string
	OTelHeaders     string
	OTelInsecure    bool
	OTelServiceName string
}

// Default returns the built-in settings.
func Default() *Config {
	cwd, _ := os.Getwd()
	runID := time.Now().UTC().Format("20060102T150405Z") + "-" + uuid.NewString()[:8]
	artifactDir := filepath.Join(cwd, "e2e", "artifacts", runID)
	return &Config{
		RunID:               runID,
		Environment:         DefaultEnvironment,
		DefaultTimeout:      10 * time.Second,
		ShortTimeout:        3 * time.Second,
		LongTimeout:         30 * time.Second,
		AnimationTimeout:    time.Second,
		PollInterval:        100 * time.Millisecond,
		MaxRetries:          3,
		RetryDelay:          time.Second,
		ScreenshotOnFailure: true,
		LogCollection:       LogCollectionFailure,
		ArtifactDir:         artifactDir,
		ResetOnLaunch:       true,
		SpecDir:             filepath.Join(cwd, "e2e", "specs"),
		Fixtures:            filepath.Join(cwd, "e2e", "datasets", "fixtures.yaml"),
		LogFormat:           "console",
		LogLevel:            "info",
		MetricsEnabled:      true,
		MetricsPath:         filepath.Join(artifactDir, "metrics.prom"),
		DriverKind:          DriverSim,
		Headless:            true,
		OTelInsecure:        true,
		OTelServiceName:     "ui-e2e",
	}
}

// FromEnv returns defaults overlaid with recognized environment variables.
// Malformed values are ignored and the built-in value is kept.
func FromEnv(lookup func(string) (string, bool)) *Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}
	cfg := Default()

	if value := env.str("TEST_ENVIRONMENT", ""); value != "" {
		cfg.Environment, _ = ParseEnvironment(value)
	}
	if value := env.str("DEFAULT_TIMEOUT", ""); value != "" {
		if d, ok := parseSeconds(value); ok {
			cfg.DefaultTimeout = d
		}
	}
	if value := env.str("VERBOSE_LOGGING", ""); value != "" {
		cfg.Verbose = strings.EqualFold(value, "true")
	}
	cfg.CI = env.boolean("CI", cfg.CI)
	cfg.TestSuite = env.str("TEST_SUITE", cfg.TestSuite)
	if value := env.str("TEST_TAGS", ""); value != "" {
		cfg.Tags = splitCSV(value)
	}
	if retries := env.integer("RETRY_COUNT", cfg.MaxRetries); retries > 0 {
		cfg.MaxRetries = retries
	}

	cfg.RunID = env.str("UI_E2E_RUN_ID", cfg.RunID)
	cfg.ArtifactDir = env.str("UI_E2E_ARTIFACT_DIR", filepath.Join(filepath.Dir(cfg.ArtifactDir), cfg.RunID))
	cfg.MetricsPath = env.str("UI_E2E_METRICS_PATH", filepath.Join(cfg.ArtifactDir, "metrics.prom"))
	cfg.SpecDir = env.str("UI_E2E_SPEC_DIR", cfg.SpecDir)
	cfg.Fixtures = env.str("UI_E2E_FIXTURES", cfg.Fixtures)
	cfg.LogFormat = env.str("UI_E2E_LOG_FORMAT", cfg.LogFormat)
	cfg.LogLevel = env.str("UI_E2E_LOG_LEVEL", cfg.LogLevel)
	cfg.LogCollection = env.str("UI_E2E_LOG_COLLECTION", cfg.LogCollection)
	cfg.MetricsEnabled = env.boolean("UI_E2E_METRICS", cfg.MetricsEnabled)
	cfg.ScreenshotOnFailure = env.boolean("UI_E2E_SCREENSHOT_ON_FAILURE", cfg.ScreenshotOnFailure)
	cfg.ScreenshotOnSuccess = env.boolean("UI_E2E_SCREENSHOT_ON_SUCCESS", cfg.ScreenshotOnSuccess)
	cfg.ResetOnLaunch = env.boolean("UI_E2E_RESET_ON_LAUNCH", cfg.ResetOnLaunch)
	cfg.RetryDelay = env.duration("UI_E2E_RETRY_DELAY", cfg.RetryDelay)
	cfg.PollInterval = env.duration("UI_E2E_POLL_INTERVAL", cfg.PollInterval)
	cfg.DriverKind = env.str("UI_E2E_DRIVER", cfg.DriverKind)
	cfg.AppURL = env.str("UI_E2E_APP_URL", cfg.AppURL)
	cfg.BrowserBin = env.str("UI_E2E_BROWSER_BIN", cfg.BrowserBin)
	cfg.Headless = env.boolean("UI_E2E_HEADLESS", cfg.Headless)

	cfg.ObjectStoreProvider = env.str("UI_E2E_OBJECTSTORE_PROVIDER", "")
	cfg.ObjectStoreBucket = env.str("UI_E2E_OBJECTSTORE_BUCKET", "")
	cfg.ObjectStorePrefix = env.str("UI_E2E_OBJECTSTORE_PREFIX", "")
	cfg.ObjectStoreRegion = env.str("UI_E2E_OBJECTSTORE_REGION", "")
	cfg.ObjectStoreEndpoint = env.str("UI_E2E_OBJECTSTORE_ENDPOINT", "")
	cfg.ObjectStoreAccessKey = env.str("UI_E2E_OBJECTSTORE_ACCESS_KEY", "")
	cfg.ObjectStoreSecretKey = env.str("UI_E2E_OBJECTSTORE_SECRET_KEY", "")
	cfg.ObjectStoreSessionToken = env.str("UI_E2E_OBJECTSTORE_SESSION_TOKEN", "")
	cfg.ObjectStoreS3PathStyle = env.boolean("UI_E2E_OBJECTSTORE_S3_PATH_STYLE", false)
	cfg.ObjectStoreGCPCredentialsFile = env.str("UI_E2E_OBJECTSTORE_GCP_CREDENTIALS_FILE", "")
	cfg.ObjectStoreGCPCredentialsJSON = env.str("UI_E2E_OBJECTSTORE_GCP_CREDENTIALS_JSON", "")
	cfg.ObjectStoreAzureAccount = env.str("UI_E2E_OBJECTSTORE_AZURE_ACCOUNT", "")
	cfg.ObjectStoreAzureKey = env.str("UI_E2E_OBJECTSTORE_AZURE_KEY", "")
	cfg.ObjectStoreAzureEndpoint = env.str("UI_E2E_OBJECTSTORE_AZURE_ENDPOINT", "")
	cfg.ObjectStoreAzureSASToken = env.str("UI_E2E_OBJECTSTORE_AZURE_SAS_TOKEN", "")

	cfg.OTelEnabled = env.boolean("UI_E2E_OTEL_ENABLED", cfg.OTelEnabled)
	cfg.OTelEndpoint = env.str("UI_E2E_OTEL_ENDPOINT", cfg.OTelEndpoint)
	cfg.OTelHeaders = env.str("UI_E2E_OTEL_HEADERS", cfg.OTelHeaders)
	cfg.OTelInsecure = env.boolean("UI_E2E_OTEL_INSECURE", cfg.OTelInsecure)
	cfg.OTelServiceName = env.str("UI_E2E_OTEL_SERVICE_NAME", cfg.OTelServiceName)

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg
}

// Load reads environment variables and then binds command-line flags on fs.
// Flags win over environment variables.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg := FromEnv(nil)
	if err := cfg.BindFlags(fs); err != nil {
		return nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BindFlags registers flags whose defaults are the current values.
func (c *Config) BindFlags(fs *pflag.FlagSet) error {
	if fs == nil {
		return fmt.Errorf("flag set is required")
	}
	fs.StringVar(&c.RunID, "run-id", c.RunID, "unique run identifier")
	fs.String("environment", string(c.Environment), "target environment: development|staging|production|test")
	fs.DurationVar(&c.DefaultTimeout, "default-timeout", c.DefaultTimeout, "default wait timeout")
	fs.DurationVar(&c.ShortTimeout, "short-timeout", c.ShortTimeout, "short wait timeout")
	fs.DurationVar(&c.LongTimeout, "long-timeout", c.LongTimeout, "long wait timeout")
	fs.DurationVar(&c.PollInterval, "poll-interval", c.PollInterval, "condition poll interval")
	fs.IntVar(&c.MaxRetries, "retries", c.MaxRetries, "max attempts for flaky actions and scenarios")
	fs.DurationVar(&c.RetryDelay, "retry-delay", c.RetryDelay, "base delay between retry attempts")
	fs.StringVar(&c.ArtifactDir, "artifact-dir", c.ArtifactDir, "directory for artifacts")
	fs.StringVar(&c.SpecDir, "spec-dir", c.SpecDir, "directory containing scenario specs")
	fs.StringVar(&c.Fixtures, "fixtures", c.Fixtures, "path to fixture registry YAML")
	fs.StringVar(&c.TestSuite, "suite", c.TestSuite, "suite selector")
	fs.StringSliceVar(&c.Tags, "tags", c.Tags, "comma-separated tag selector")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: json|console")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug|info|warning|error|critical")
	fs.StringVar(&c.LogCollection, "log-collection", c.LogCollection, "evidence collection: never|failure|always")
	fs.BoolVar(&c.MetricsEnabled, "metrics", c.MetricsEnabled, "enable metrics output")
	fs.StringVar(&c.MetricsPath, "metrics-path", c.MetricsPath, "metrics output path")
	fs.BoolVar(&c.ResetOnLaunch, "reset-on-launch", c.ResetOnLaunch, "reset application state on launch")
	fs.StringVar(&c.DriverKind, "driver", c.DriverKind, "ui driver: sim|rod")
	fs.StringVar(&c.AppURL, "app-url", c.AppURL, "application URL for the rod driver")
	fs.StringVar(&c.BrowserBin, "browser-bin", c.BrowserBin, "browser binary for the rod driver")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "run the browser headless")
	fs.StringVar(&c.ObjectStoreProvider, "objectstore-provider", c.ObjectStoreProvider, "artifact upload provider: s3|minio|gcs|azure")
	fs.StringVar(&c.ObjectStoreBucket, "objectstore-bucket", c.ObjectStoreBucket, "artifact upload bucket/container")
	fs.StringVar(&c.ObjectStorePrefix, "objectstore-prefix", c.ObjectStorePrefix, "artifact upload prefix")
	fs.BoolVar(&c.OTelEnabled, "otel", c.OTelEnabled, "enable OpenTelemetry exporters")
	fs.StringVar(&c.OTelEndpoint, "otel-endpoint", c.OTelEndpoint, "OTLP endpoint (host:port)")
	return nil
}

// ApplyFlags normalizes values that flags cannot bind directly.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	if flag := fs.Lookup("environment"); flag != nil && flag.Changed {
		c.Environment, _ = ParseEnvironment(flag.Value.String())
	}
	if flag := fs.Lookup("artifact-dir"); flag != nil && flag.Changed {
		if metrics := fs.Lookup("metrics-path"); metrics == nil || !metrics.Changed {
			c.MetricsPath = filepath.Join(c.ArtifactDir, "metrics.prom")
		}
	}
	c.Tags = normalizeTags(c.Tags)
	return c.Validate()
}

// Validate checks the timeout and environment invariants.
func (c *Config) Validate() error {
	for name, value := range map[string]time.Duration{
		"default timeout":   c.DefaultTimeout,
		"short timeout":     c.ShortTimeout,
		"long timeout":      c.LongTimeout,
		"animation timeout": c.AnimationTimeout,
		"poll interval":     c.PollInterval,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}
	if _, ok := ParseEnvironment(string(c.Environment)); !ok {
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.MaxRetries)
	}
	return nil
}

// Clone returns an independent copy, used to give each shard its own settings.
func (c *Config) Clone() *Config {
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	return &out
}

func splitCSV(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return splitCSV(strings.Join(tags, ","))
}

// parseSeconds reads a float number of seconds. Values that are not finite,
// do not fit a Duration or round down to zero are rejected.
func parseSeconds(value string) (time.Duration, bool) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, false
	}
	if seconds >= math.MaxInt64/float64(time.Second) {
		return 0, false
	}
	d := time.Duration(seconds * float64(time.Second))
	return d, d > 0
}
