package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config provides logging configuration
type Config struct {
	DisableCaller     bool // Disable caller information for performance
	DisableStacktrace bool // Disable stacktraces for performance

	OutputPaths      []string // Output file paths
	ErrorOutputPaths []string // Error output file paths

	Level zapcore.Level // Minimum log level
}

// NewLogger creates a zap logger from the given configuration
func NewLogger(config Config) (*zap.Logger, error) {
	if len(config.OutputPaths) == 0 {
		config.OutputPaths = []string{"stdout"}
	}
	if len(config.ErrorOutputPaths) == 0 {
		config.ErrorOutputPaths = []string{"stderr"}
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.TimeKey = "ts"
	zapConfig.EncoderConfig.LevelKey = "level"
	zapConfig.EncoderConfig.MessageKey = "msg"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	if config.DisableCaller {
		zapConfig.EncoderConfig.CallerKey = ""
	}
	if config.DisableStacktrace {
		zapConfig.EncoderConfig.StacktraceKey = ""
	}

	zapConfig.Sampling = nil
	zapConfig.Level = zap.NewAtomicLevelAt(config.Level)
	zapConfig.OutputPaths = config.OutputPaths
	zapConfig.ErrorOutputPaths = config.ErrorOutputPaths

	return zapConfig.Build(
		// Only stacktrace for critical errors
		zap.AddStacktrace(zapcore.DPanicLevel),
	)
}

// GetProductionConfig returns the default configuration for a deployed
// gateway: info level, no stacktraces, stdout/stderr outputs.
func GetProductionConfig() Config {
	return Config{
		DisableCaller:     true,
		DisableStacktrace: true,
		Level:             zapcore.InfoLevel,
	}
}

// GetDebugConfig returns a configuration for development/debugging
func GetDebugConfig() Config {
	return Config{
		DisableCaller:     false,
		DisableStacktrace: false,
		Level:             zapcore.DebugLevel,
	}
}

// CreateLoggerFromEnv creates a logger based on the LOG_LEVEL
// environment variable ("debug" switches to the debug preset).
func CreateLoggerFromEnv() (*zap.Logger, error) {
	config := GetProductionConfig()
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		config = GetDebugConfig()
	}
	return NewLogger(config)
}
