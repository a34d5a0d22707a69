package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger tagged with the service that owns it. The zero
// value is not usable; build one with New, NewWithWriter or NewNop.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New builds a logger writing to cfg.Output.
func New(cfg *Config, service string) *Logger {
	return NewWithWriter(cfg, service, outputFor(cfg.Output))
}

// NewWithWriter builds a logger writing to w. An unknown level falls back to
// info; an unknown format falls back to JSON.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if f := strings.ToLower(cfg.Format); f == "console" || f == "pretty" {
		w = console(w, cfg.NoColor)
	}

	ctx := zerolog.New(w).Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return &Logger{zl: ctx.Logger(), service: service}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger { return &Logger{zl: zerolog.Nop()} }

func (l *Logger) derive(ctx zerolog.Context) *Logger {
	return &Logger{zl: ctx.Logger(), service: l.service}
}

// WithComponent tags every entry with a component, e.g. "traversal".
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

// WithFields attaches fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.zl.With().Fields(fields))
}

// WithError attaches err to every entry.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err))
}

// GetLogger exposes the underlying zerolog logger.
func (l *Logger) GetLogger() zerolog.Logger { return l.zl }

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) { emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]interface{})  { emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]interface{})  { emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]interface{}) { emit(l.zl.Error(), msg, fields) }

// emit is a no-op for disabled levels: zerolog hands back a nil event.
func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

var global atomic.Pointer[Logger]

// Init builds the process-wide logger from cfg.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg, cfg.ServiceName))
}

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the process-wide logger, an info-level console
// logger on stdout until Init or SetGlobalLogger runs.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	cfg := Config{}
	cfg.ApplyDefaults()
	l := New(&cfg, "")
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

func Debug(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Error(msg, fields...) }

// WithComponent tags the global logger.
func WithComponent(name string) *Logger { return GetGlobalLogger().WithComponent(name) }

func outputFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

func console(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
		FormatLevel: func(i interface{}) string {
			return levelTag(fmt.Sprint(i), noColor)
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprint(i) + ":" },
		FormatFieldValue: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
	}
}

// levelTag renders a level as a three letter tag such as [INF], colored by
// severity unless noColor is set.
func levelTag(level string, noColor bool) string {
	var tag, color string
	switch strings.ToLower(level) {
	case "trace":
		tag, color = "TRC", "90"
	case "debug":
		tag, color = "DBG", "36"
	case "info":
		tag, color = "INF", "32"
	case "warn":
		tag, color = "WRN", "33"
	case "error":
		tag, color = "ERR", "31"
	case "fatal", "panic":
		tag, color = "FTL", "35"
	default:
		return "[" + strings.ToUpper(level) + "]"
	}
	if noColor {
		return "[" + tag + "]"
	}
	return "\033[" + color + "m[" + tag + "]\033[0m"
}
