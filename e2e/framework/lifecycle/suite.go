// Package lifecycle owns per-process test state and the per-test setup and
// teardown every UI test shares.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/splunk/ui-e2e/e2e/framework/artifacts"
	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/data"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/graph"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/metrics"
	"github.com/splunk/ui-e2e/e2e/framework/objectstore"
	"github.com/splunk/ui-e2e/e2e/framework/results"
	"github.com/splunk/ui-e2e/e2e/framework/telemetry"
)

// Suite holds the state shared by every test of one process or shard.
// Cases of a suite share one driver and run one at a time.
type Suite struct {
	Config    *config.Config
	Logger    *logging.Logger
	Metrics   *metrics.Collector
	Telemetry *telemetry.Telemetry
	Results   *results.Collection
	Artifacts *artifacts.Writer
	Data      *data.Registry

	clock         clock.Clock
	newDriver     DriverFactory
	shutdownOTel  func(context.Context) error
	start         time.Time
	ownsTelemetry bool

	mu       sync.Mutex
	driver   driver.Driver
	finished bool
}

// Option customizes a Suite.
type Option func(*Suite)

// WithClock injects the clock used for waits and durations.
func WithClock(c clock.Clock) Option {
	return func(s *Suite) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger replaces the logger built from config.
func WithLogger(l *logging.Logger) Option {
	return func(s *Suite) {
		if l != nil {
			s.Logger = l
		}
	}
}

// WithDriverFactory replaces NewDriver.
func WithDriverFactory(f DriverFactory) Option {
	return func(s *Suite) {
		if f != nil {
			s.newDriver = f
		}
	}
}

// WithTelemetry supplies an already initialized telemetry.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *Suite) {
		if t != nil {
			s.Telemetry = t
		}
	}
}

// WithRegistry replaces the fixture registry loaded from config.
func WithRegistry(r *data.Registry) Option {
	return func(s *Suite) {
		if r != nil {
			s.Data = r
		}
	}
}

// NewSuite validates cfg and prepares logging, metrics, telemetry, the
// artifact directory and fixtures.
func NewSuite(ctx context.Context, cfg *config.Config, opts ...Option) (*Suite, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Suite{
		Config:    cfg,
		Results:   &results.Collection{},
		clock:     clock.RealClock{},
		newDriver: NewDriver,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		logger, err := logging.NewLogger(cfg)
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		s.Logger = logger
	}
	s.Logger = s.Logger.WithClock(s.clock)
	s.start = s.clock.Now()

	writer, err := artifacts.NewWriter(cfg.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	s.Artifacts = writer
	if cfg.MetricsEnabled {
		s.Metrics = metrics.NewCollector()
	}
	if s.Telemetry == nil {
		tel, shutdown, err := telemetry.Init(ctx, cfg, s.Logger)
		if err != nil {
			return nil, err
		}
		s.Telemetry, s.shutdownOTel, s.ownsTelemetry = tel, shutdown, true
	}
	if s.Data == nil {
		registry, err := loadFixtures(ctx, cfg, s.Logger)
		if err != nil {
			return nil, err
		}
		s.Data = registry
	}
	s.Logger.Info("suite ready",
		zap.String("run_id", cfg.RunID),
		zap.String("environment", string(cfg.Environment)),
		zap.String("driver", cfg.DriverKind),
		zap.String("artifacts", writer.RunDir),
	)
	return s, nil
}

// loadFixtures merges the configured fixture file over the built-ins. A
// missing local file is not an error; an objectstore:// path is downloaded.
func loadFixtures(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*data.Registry, error) {
	registry := data.DefaultRegistry()
	if strings.TrimSpace(cfg.Fixtures) == "" {
		return registry, nil
	}
	src := data.Source{File: cfg.Fixtures}
	if key, ok := strings.CutPrefix(cfg.Fixtures, "objectstore://"); ok {
		src = data.Source{Source: "objectstore", File: key}
	} else if _, err := os.Stat(cfg.Fixtures); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no fixture file, using built-in fixtures", zap.String("path", cfg.Fixtures))
		return registry, nil
	}
	loaded, err := data.LoadSource(ctx, src, filepath.Join(cfg.ArtifactDir, "fixtures"), ObjectStoreConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("load fixtures %s: %w", cfg.Fixtures, err)
	}
	registry.Merge(loaded)
	return registry, nil
}

// Clock returns the suite clock.
func (s *Suite) Clock() clock.Clock {
	return s.clock
}

func (s *Suite) ensureDriver() (driver.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver != nil {
		return s.driver, nil
	}
	d, err := s.newDriver(s.Config, s.clock, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("create %s driver: %w", s.Config.DriverKind, err)
	}
	s.driver = d
	return d, nil
}

// Finish writes results, the run graph, metrics and the summary, publishes the artifact
// directory when an object store is configured, and releases the driver.
// It returns the run summary; later calls return the same summary.
func (s *Suite) Finish(ctx context.Context) (results.Summary, error) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return s.Results.Summary(), nil
	}
	s.finished = true
	d := s.driver
	s.mu.Unlock()

	end := s.clock.Now()
	tests := s.Results.Results()
	summary := results.Summarize(tests)
	run := results.RunResult{
		RunID:     s.Config.RunID,
		StartTime: s.start,
		EndTime:   end,
		Duration:  end.Sub(s.start),
		Tests:     tests,
	}

	var errs []error
	if _, err := s.Artifacts.WriteJSON("results.json", run); err != nil {
		errs = append(errs, fmt.Errorf("write results: %w", err))
	}
	if _, err := s.Artifacts.WriteJSON("summary.json", summary); err != nil {
		errs = append(errs, fmt.Errorf("write summary: %w", err))
	}
	g := graph.FromRun(run)
	if _, err := s.Artifacts.WriteJSON("graph.json", g); err != nil {
		errs = append(errs, fmt.Errorf("write graph: %w", err))
	}
	if _, err := s.Artifacts.WriteText("graph.puml", graph.RenderPlantUML(g)); err != nil {
		errs = append(errs, fmt.Errorf("write graph diagram: %w", err))
	}
	text := results.RenderSummary(summary)
	if _, err := s.Artifacts.WriteText("summary.txt", text); err != nil {
		errs = append(errs, fmt.Errorf("write summary text: %w", err))
	}
	if s.Metrics != nil {
		path := s.Config.MetricsPath
		if path == "" {
			path = filepath.Join(s.Artifacts.RunDir, "metrics.prom")
		}
		if err := s.Metrics.Write(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}

	if d != nil {
		if err := d.Terminate(ctx); err != nil && !errors.Is(err, driver.ErrNotLaunched) {
			s.Logger.Warning("terminate app", zap.Error(err))
		}
		if closer, ok := d.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				s.Logger.Warning("close driver", zap.Error(err))
			}
		}
	}
	if err := s.publish(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.ownsTelemetry && s.shutdownOTel != nil {
		if err := s.shutdownOTel(ctx); err != nil {
			s.Logger.Warning("otel shutdown", zap.Error(err))
		}
	}

	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		s.Logger.Info(line)
	}
	s.Logger.Info("run finished",
		zap.Int("total", summary.Total),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", run.Duration),
	)
	return summary, errors.Join(errs...)
}

func (s *Suite) publish(ctx context.Context) error {
	cfg := s.Config
	if strings.TrimSpace(cfg.ObjectStoreProvider) == "" || strings.TrimSpace(cfg.ObjectStoreBucket) == "" {
		return nil
	}
	osCfg := ObjectStoreConfig(cfg)
	osCfg.Prefix = ""
	provider, err := objectstore.NewProvider(ctx, osCfg)
	if err != nil {
		return fmt.Errorf("publish artifacts: %w", err)
	}
	defer provider.Close()
	prefix := objectstore.ResolveKey(cfg.ObjectStorePrefix, cfg.RunID)
	uploaded, err := objectstore.Publish(ctx, provider, s.Artifacts.RunDir, prefix)
	if err != nil {
		return fmt.Errorf("publish artifacts: %w", err)
	}
	s.Logger.Info("artifacts published",
		zap.String("provider", objectstore.NormalizeProvider(cfg.ObjectStoreProvider)),
		zap.String("bucket", cfg.ObjectStoreBucket),
		zap.String("prefix", prefix),
		zap.Int("files", len(uploaded)),
	)
	return nil
}
