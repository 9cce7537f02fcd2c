// Package logger provides the key/value structured logger used across restui.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a leveled key/value logger.
// Calls take a message followed by alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

// Options configures New
type Options struct {
	Level      string
	Writers    []string // console|file
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type zeroLogger struct {
	zl zerolog.Logger
}

// New creates a zerolog-backed Logger writing to the configured sinks.
// An empty writer list falls back to the console.
func New(opts Options) (Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	for _, w := range opts.Writers {
		switch w {
		case "console":
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
		case "file":
			if opts.File == "" {
				return nil, fmt.Errorf("file writer requires a log file path")
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    opts.MaxSizeMB,
				MaxBackups: opts.MaxBackups,
				Compress:   true,
			})
		default:
			return nil, fmt.Errorf("unknown log writer %q", w)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	return &zeroLogger{zl: zl}, nil
}

// NewWithWriter creates a Logger writing JSON lines to w. Mostly useful in tests.
func NewWithWriter(w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}
	return &zeroLogger{zl: zerolog.New(w).Level(lvl)}
}

// NewNop returns a Logger that discards everything
func NewNop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

func (l *zeroLogger) Debug(msg string, kv ...any) { l.emit(l.zl.Debug(), msg, kv) }
func (l *zeroLogger) Info(msg string, kv ...any)  { l.emit(l.zl.Info(), msg, kv) }
func (l *zeroLogger) Warn(msg string, kv ...any)  { l.emit(l.zl.Warn(), msg, kv) }
func (l *zeroLogger) Error(msg string, kv ...any) { l.emit(l.zl.Error(), msg, kv) }

func (l *zeroLogger) With(kv ...any) Logger {
	return &zeroLogger{zl: l.zl.With().Fields(fields(kv)).Logger()}
}

func (l *zeroLogger) emit(ev *zerolog.Event, msg string, kv []any) {
	if ev == nil {
		return
	}
	ev.Fields(fields(kv)).Msg(msg)
}

// fields turns alternating key/value pairs into a map.
// A dangling key is logged under "!BADKEY".
func fields(kv []any) map[string]any {
	out := make(map[string]any, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			out["!BADKEY"] = key
			break
		}
		val := kv[i+1]
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		out[key] = val
	}
	return out
}
