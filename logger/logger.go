package logger

import (
	"fmt"
	"strings"

	"dropship-hub/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger from the log section of the config.
// Console output is for development; json is what production ships.
// Every entry carries the service name.
func New(cfg config.LogConfig, service string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zc.Sampling = nil
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	zc.OutputPaths = []string{outputPath(cfg.Output)}
	zc.ErrorOutputPaths = []string{"stderr"}
	if service != "" {
		zc.InitialFields = map[string]interface{}{"service": service}
	}

	log, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}

// Must is New for startup code that cannot go on without a logger
func Must(cfg config.LogConfig, service string) *zap.Logger {
	log, err := New(cfg, service)
	if err != nil {
		panic(err)
	}
	return log
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// outputPath maps the configured output to a zap sink. Anything other than
// stdout or stderr is a file path.
func outputPath(output string) string {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stdout":
		return "stdout"
	case "stderr":
		return "stderr"
	default:
		return output
	}
}
