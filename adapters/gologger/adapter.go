package gologger

import (
	"context"
	"sort"

	glog "github.com/goliatone/go-logger/glog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// NewConsole builds a human readable zap logger on stderr.
func NewConsole(verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

// ZapLogger satisfies glog.Logger and glog.FieldsLogger over a zap logger.
// Trace maps to debug; zap has no lower level.
type ZapLogger struct {
	base *zap.Logger
}

func NewZapLogger(base *zap.Logger) *ZapLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLogger{base: base}
}

func (l *ZapLogger) Zap() *zap.Logger {
	if l == nil || l.base == nil {
		return zap.NewNop()
	}
	return l.base
}

func (l *ZapLogger) Trace(msg string, args ...any) { l.Zap().Sugar().Debugw(msg, args...) }
func (l *ZapLogger) Debug(msg string, args ...any) { l.Zap().Sugar().Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.Zap().Sugar().Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.Zap().Sugar().Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.Zap().Sugar().Errorw(msg, args...) }
func (l *ZapLogger) Fatal(msg string, args ...any) { l.Zap().Sugar().Fatalw(msg, args...) }

func (l *ZapLogger) WithContext(context.Context) glog.Logger {
	return l
}

// WithFields returns a child logger carrying fields, in key order.
func (l *ZapLogger) WithFields(fields map[string]any) glog.Logger {
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	zapFields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		zapFields = append(zapFields, zap.Any(key, fields[key]))
	}
	return &ZapLogger{base: l.Zap().With(zapFields...)}
}

// ZapProvider hands out named children of one zap logger.
type ZapProvider struct {
	base *zap.Logger
}

func NewZapProvider(base *zap.Logger) *ZapProvider {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapProvider{base: base}
}

func (p *ZapProvider) GetLogger(name string) glog.Logger {
	if p == nil || p.base == nil {
		return glog.Nop()
	}
	if name == "" {
		return NewZapLogger(p.base)
	}
	return NewZapLogger(p.base.Named(name))
}

var (
	_ glog.Logger         = (*ZapLogger)(nil)
	_ glog.FieldsLogger   = (*ZapLogger)(nil)
	_ glog.LoggerProvider = (*ZapProvider)(nil)
)
