package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"http-logging/infrastructure/config"
)

// noneLevel disables a channel completely.
const noneLevel = zapcore.FatalLevel + 1

// Factory hands out named log channels. All channels share the same sinks;
// each channel has its own level, which can be changed at runtime.
type Factory struct {
	core zapcore.Core

	mu       sync.Mutex
	cfg      *config.Logging
	channels map[string]*zap.Logger
	levels   map[string]zap.AtomicLevel
	files    []*lumberjack.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithCore replaces the console and file sinks with core. Tests pass an
// observer core here.
func WithCore(core zapcore.Core) Option {
	return func(f *Factory) {
		f.core = core
	}
}

// NewFactory builds the sinks described by cfg.
func NewFactory(cfg *config.Logging, opts ...Option) (*Factory, error) {
	if cfg == nil {
		cfg = &config.Logging{}
	}
	f := &Factory{
		cfg:      cfg,
		channels: make(map[string]*zap.Logger),
		levels:   make(map[string]zap.AtomicLevel),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.core == nil {
		core, err := f.buildSinks(cfg)
		if err != nil {
			return nil, err
		}
		f.core = core
	}

	// 脱敏处理
	var masker *SensitiveDataMasker
	if cfg.ShouldMaskSensitive() {
		masker = NewSensitiveDataMasker()
	}
	f.core = &maskingCore{Core: f.core, masker: masker}
	return f, nil
}

func (f *Factory) buildSinks(cfg *config.Logging) (zapcore.Core, error) {
	var cores []zapcore.Core

	// 控制台输出
	if cfg.Console.IsEnabled() {
		var enc zapcore.Encoder
		if cfg.Console.GetFormat() == "json" {
			enc = zapcore.NewJSONEncoder(fileEncoderConfig())
		} else {
			enc = newConsoleEncoder(cfg.Console.GetColorize() && shouldUseColor(os.Stdout))
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stdout), zapcore.DebugLevel))
	}

	// 文件输出
	if cfg.File.Enabled {
		path := cfg.File.GetPath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败 %s: %w", filepath.Dir(path), err)
		}
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.File.GetMaxSizeMB(),
			MaxAge:     cfg.File.GetMaxAgeDays(),
			MaxBackups: cfg.File.GetMaxBackups(),
			Compress:   cfg.File.Compress,
		}
		f.files = append(f.files, lj)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(lj), zapcore.DebugLevel))
	}

	switch len(cores) {
	case 0:
		return zapcore.NewNopCore(), nil
	case 1:
		return cores[0], nil
	default:
		return zapcore.NewTee(cores...), nil
	}
}

func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// Logger returns the channel called name, creating it on first use.
func (f *Factory) Logger(name string) *zap.Logger {
	f.mu.Lock()
	defer f.mu.Unlock()

	if logger, ok := f.channels[name]; ok {
		return logger
	}
	level := zap.NewAtomicLevelAt(parseLevel(f.cfg.GetChannelLevel(name)))
	core := &channelCore{Core: f.core, level: level}
	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	).Named(name)

	f.channels[name] = logger
	f.levels[name] = level
	return logger
}

// Level returns the level handle of a channel.
func (f *Factory) Level(name string) zap.AtomicLevel {
	f.Logger(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[name]
}

// ApplyLevels re-reads channel levels from cfg. Existing loggers pick up
// the new levels immediately.
func (f *Factory) ApplyLevels(cfg *config.Logging) {
	if cfg == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cfg = cfg
	for name, level := range f.levels {
		level.SetLevel(parseLevel(cfg.GetChannelLevel(name)))
	}
}

// Sync flushes every channel.
func (f *Factory) Sync() error {
	if err := f.core.Sync(); err != nil && !isIgnorableSyncError(err) {
		return err
	}
	return nil
}

// Close flushes and releases the file sinks.
func (f *Factory) Close() error {
	err := f.Sync()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lj := range f.files {
		if cerr := lj.Close(); err == nil {
			err = cerr
		}
	}
	f.files = nil
	return err
}

// channelCore applies the level of one channel in front of the shared sinks.
type channelCore struct {
	zapcore.Core
	level zapcore.LevelEnabler
}

func (c *channelCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

func (c *channelCore) With(fields []zapcore.Field) zapcore.Core {
	return &channelCore{Core: c.Core.With(fields), level: c.level}
}

func (c *channelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "dpanic":
		return zapcore.DPanicLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	case "none":
		return noneLevel
	default:
		return zapcore.InfoLevel
	}
}

// stdout/stderr cannot be synced on some platforms
func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stdout") ||
		strings.Contains(msg, "sync /dev/stderr") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl")
}
