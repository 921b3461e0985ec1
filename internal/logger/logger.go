package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates the service logger. Production writes JSON, everything else a
// colored console format. Output always goes to stdout for container use.
func New(env string) (*zap.Logger, error) {
	level := zapcore.DebugLevel
	if env == "production" {
		level = zapcore.InfoLevel
	}

	errSink, _, err := zap.Open("stderr")
	if err != nil {
		return nil, err
	}

	logger := zap.New(
		newCore(env, zapcore.Lock(os.Stdout), level),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(errSink),
	).With(zap.String("service", "academy-platform"))

	return logger, nil
}

func newCore(env string, out zapcore.WriteSyncer, level zapcore.LevelEnabler) zapcore.Core {
	var encoder zapcore.Encoder
	if env == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig(env))
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig(env))
	}
	return zapcore.NewCore(encoder, out, level)
}

func encoderConfig(env string) zapcore.EncoderConfig {
	if env == "production" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.MessageKey = "message"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
