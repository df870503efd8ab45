package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/splunk/ui-e2e/e2e/framework/config"
)

// NewZap builds a zap logger based on runner config.
func NewZap(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.LogFormat, "json") {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		// Development config panics on DPanic and prints stack traces on warnings.
		zapCfg.Development = false
		zapCfg.DisableStacktrace = true
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(toZapLevel(minimumLevel(cfg)))
	return zapCfg.Build()
}

// NewLogger builds the framework logger from config.
func NewLogger(cfg *config.Config) (*Logger, error) {
	zl, err := NewZap(cfg)
	if err != nil {
		return nil, err
	}
	return New(zl, minimumLevel(cfg)), nil
}

func minimumLevel(cfg *config.Config) Level {
	if cfg.Verbose {
		return LevelDebug
	}
	level, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		return LevelInfo
	}
	return level
}
