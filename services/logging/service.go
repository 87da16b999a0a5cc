package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

// Config selects the level, the encoding ("json" or "console") and the
// output ("stdout", "stderr" or a file path).
type Config struct {
	Level      LogLevel
	Format     string
	OutputPath string
}

var nopLogger = zap.NewNop()

// Service is the logger handed to every component. A nil *Service, or one
// without a zap logger, discards everything.
type Service struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func NewService(config Config) (*Service, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel(config.Level))

	if config.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return FromZap(logger), nil
}

// FromZap wraps an existing zap logger, e.g. one backed by zaptest/observer.
func FromZap(logger *zap.Logger) *Service {
	return &Service{logger: logger, sugar: logger.Sugar()}
}

func NewNop() *Service {
	return FromZap(nopLogger)
}

func (s *Service) base() *zap.Logger {
	if s == nil || s.logger == nil {
		return nopLogger
	}
	return s.logger
}

func (s *Service) sugared() *zap.SugaredLogger {
	if s == nil || s.sugar == nil {
		return nopLogger.Sugar()
	}
	return s.sugar
}

// Named returns a child logger scoped to a component name.
func (s *Service) Named(name string) *Service {
	if s == nil || s.logger == nil {
		return s
	}
	return FromZap(s.logger.Named(name))
}

func (s *Service) With(fields ...zap.Field) *Service {
	if s == nil || s.logger == nil {
		return s
	}
	return FromZap(s.logger.With(fields...))
}

func (s *Service) Debug(msg string, fields ...zap.Field) { s.base().Debug(msg, fields...) }

func (s *Service) Info(msg string, fields ...zap.Field) { s.base().Info(msg, fields...) }

func (s *Service) Warn(msg string, fields ...zap.Field) { s.base().Warn(msg, fields...) }

func (s *Service) Error(msg string, fields ...zap.Field) { s.base().Error(msg, fields...) }

// Infof, Warnf and Errorf carry gorm's printf-style messages.
func (s *Service) Infof(template string, args ...any) { s.sugared().Infof(template, args...) }

func (s *Service) Warnf(template string, args ...any) { s.sugared().Warnf(template, args...) }

func (s *Service) Errorf(template string, args ...any) { s.sugared().Errorf(template, args...) }

func (s *Service) Sync() error {
	if s == nil || s.logger == nil {
		return nil
	}
	return s.logger.Sync()
}

// zapLevel falls back to info for unknown names.
func zapLevel(level LogLevel) zapcore.Level {
	parsed, err := zapcore.ParseLevel(string(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}
