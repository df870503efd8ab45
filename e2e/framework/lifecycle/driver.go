package lifecycle

import (
	"fmt"

	"github.com/go-logr/zapr"
	"k8s.io/utils/clock"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/driver/rod"
	"github.com/splunk/ui-e2e/e2e/framework/driver/sim"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/objectstore"
)

// DriverFactory builds the driver a suite launches the app with.
type DriverFactory func(cfg *config.Config, clk clock.Clock, logger *logging.Logger) (driver.Driver, error)

// NewDriver selects the driver named by cfg.DriverKind.
func NewDriver(cfg *config.Config, clk clock.Clock, logger *logging.Logger) (driver.Driver, error) {
	switch cfg.DriverKind {
	case config.DriverSim, "":
		return sim.New(sim.Options{Clock: clk, PollInterval: cfg.PollInterval}), nil
	case config.DriverRod:
		if cfg.AppURL == "" {
			return nil, fmt.Errorf("rod driver needs an app url")
		}
		return rod.New(rod.Options{
			AppURL:       cfg.AppURL,
			BrowserBin:   cfg.BrowserBin,
			Headless:     cfg.Headless,
			PollInterval: cfg.PollInterval,
			Logger:       zapr.NewLogger(logger.Zap().Named("rod")),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DriverKind)
	}
}

// ObjectStoreConfig maps the run configuration onto an object store client
// configuration.
func ObjectStoreConfig(cfg *config.Config) objectstore.Config {
	return objectstore.Config{
		Provider:           cfg.ObjectStoreProvider,
		Bucket:             cfg.ObjectStoreBucket,
		Prefix:             cfg.ObjectStorePrefix,
		Region:             cfg.ObjectStoreRegion,
		Endpoint:           cfg.ObjectStoreEndpoint,
		AccessKey:          cfg.ObjectStoreAccessKey,
		SecretKey:          cfg.ObjectStoreSecretKey,
		SessionToken:       cfg.ObjectStoreSessionToken,
		S3PathStyle:        cfg.ObjectStoreS3PathStyle,
		GCPCredentialsFile: cfg.ObjectStoreGCPCredentialsFile,
		GCPCredentialsJSON: cfg.ObjectStoreGCPCredentialsJSON,
		AzureAccount:       cfg.ObjectStoreAzureAccount,
		AzureKey:           cfg.ObjectStoreAzureKey,
		AzureEndpoint:      cfg.ObjectStoreAzureEndpoint,
		AzureSASToken:      cfg.ObjectStoreAzureSASToken,
	}
}
