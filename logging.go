package gekko

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/muesli/termenv"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
	tags   map[string]string
}

var levelColors = map[string]string{
	"DEBUG": "#8a8a8a",
	"INFO":  "#5fafd7",
	"WARN":  "#ffaf00",
	"ERROR": "#ff5f5f",
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLogger(os.Stdout, os.Stderr, prefix, debug)
}

// NewLogger writes info and debug lines to out, warnings and errors to errOut.
// Level tags are colored when the writers are terminals.
func NewLogger(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
		tags:   make(map[string]string, len(levelColors)),
	}
	for level, hex := range levelColors {
		w := out
		if level == "WARN" || level == "ERROR" {
			w = errOut
		}
		term := termenv.NewOutput(w)
		l.tags[level] = term.String(level).Foreground(term.Color(hex)).Bold().String()
	}
	return l
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) prefixf(level string, format string, args ...any) string {
	tag := l.tags[level]
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, tag, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", tag, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

// LoggingModule installs a default logger as a resource.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Logger Logger
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	if m.Logger != nil {
		app.addResources(&loggerResource{Logger: m.Logger})
		return
	}
	app.addResources(NewDefaultLogger(m.Prefix, m.Debug))
}

// loggerResource lets a caller-supplied Logger live among the resources.
type loggerResource struct {
	Logger
}

type nopLogger struct{}

func NewNopLogger() Logger                              { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
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
