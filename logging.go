package glowmask

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type LogLevel uint8

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (lv LogLevel) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// logSink is shared by a logger and everything Named from it, so the debug
// switch flips for all of them at once.
type logSink struct {
	debug atomic.Bool
	out   *log.Logger
	err   *log.Logger
}

// DefaultLogger writes DEBUG and INFO to one stream and WARN and ERROR to
// another, as "[prefix] LEVEL: message".
type DefaultLogger struct {
	prefix string
	sink   *logSink
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLogger(prefix, debug, os.Stdout, os.Stderr, log.LstdFlags|log.Lmicroseconds)
}

func NewLogger(prefix string, debug bool, out, errOut io.Writer, flags int) *DefaultLogger {
	sink := &logSink{
		out: log.New(out, "", flags),
		err: log.New(errOut, "", flags),
	}
	sink.debug.Store(debug)
	return &DefaultLogger{prefix: prefix, sink: sink}
}

// Named returns a logger on the same streams whose prefix is extended with
// "/name".
func (l *DefaultLogger) Named(name string) *DefaultLogger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "/" + name
	}
	return &DefaultLogger{prefix: prefix, sink: l.sink}
}

func (l *DefaultLogger) DebugEnabled() bool    { return l.sink.debug.Load() }
func (l *DefaultLogger) SetDebug(enabled bool) { l.sink.debug.Store(enabled) }

func (l *DefaultLogger) logf(level LogLevel, format string, args ...any) {
	if level == LevelDebug && !l.DebugEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", level, msg)
	}
	if level >= LevelWarn {
		l.sink.err.Print(msg)
		return
	}
	l.sink.out.Print(msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

// namedLogger scopes l to a subsystem when it supports it.
func namedLogger(l Logger, name string) Logger {
	if dl, ok := l.(*DefaultLogger); ok {
		return dl.Named(name)
	}
	return l
}

// LoggingModule installs a default logger as a resource. Out and ErrOut
// default to stdout and stderr.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Out    io.Writer
	ErrOut io.Writer
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	if m.Out == nil && m.ErrOut == nil {
		cmd.AddResources(NewDefaultLogger(m.Prefix, m.Debug))
		return
	}
	out, errOut := m.Out, m.ErrOut
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	cmd.AddResources(NewLogger(m.Prefix, m.Debug, out, errOut, log.LstdFlags|log.Lmicroseconds))
}

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Logger returns the first Logger resource, or a no-op logger. Never nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
