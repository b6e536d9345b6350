package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Tags printed in front of every tagged message.
const (
	TagInfo  = "prisma:info"
	TagWarn  = "prisma:warn"
	TagError = "prisma:error"
	TagQuery = "prisma:query"
)

const (
	tagField       = "tag"
	namespaceField = "namespace"
	plainTag       = "-"
)

// LogOptions configures the package logger.
type LogOptions struct {
	// Output defaults to os.Stderr.
	Output io.Writer
	// Verbose enables logrus debug level and every debug namespace, DEBUG
	// exclusions still apply.
	Verbose bool
	// DisableColor forces plain output even on a terminal.
	DisableColor bool
}

var (
	std      = newLogger(os.Stderr, false)
	stdMu    sync.RWMutex
	warnSeen sync.Map
)

func newLogger(w io.Writer, disableColor bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&Formatter{DisableColor: disableColor || !colorEnabled(w)})
	return l
}

// Init replaces the package logger.
func Init(options LogOptions) {
	out := options.Output
	if out == nil {
		out = os.Stderr
	}
	l := newLogger(out, options.DisableColor)
	forced := ""
	if options.Verbose {
		l.SetLevel(logrus.DebugLevel)
		forced = "*"
	}
	EnableDebug(forced)
	stdMu.Lock()
	std = l
	stdMu.Unlock()
}

// SetOutput redirects the package logger, colors are re-evaluated for w.
func SetOutput(w io.Writer) {
	Init(LogOptions{Output: w})
}

// Logger returns the underlying logrus logger.
func Logger() *logrus.Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func tagged(tag string) *logrus.Entry {
	return Logger().WithField(tagField, tag)
}

// Log prints the message without a tag.
func Log(args ...interface{}) {
	tagged(plainTag).Info(fmt.Sprint(args...))
}

func Info(args ...interface{}) {
	tagged(TagInfo).Info(fmt.Sprint(args...))
}

func Infof(format string, args ...interface{}) {
	tagged(TagInfo).Info(fmt.Sprintf(format, args...))
}

func Warn(args ...interface{}) {
	tagged(TagWarn).Warn(fmt.Sprint(args...))
}

func Warnf(format string, args ...interface{}) {
	tagged(TagWarn).Warn(fmt.Sprintf(format, args...))
}

// WarnOnce logs msg the first time key is seen by the process.
func WarnOnce(key, msg string) {
	if _, loaded := warnSeen.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	Warn(msg)
}

func Error(args ...interface{}) {
	tagged(TagError).Error(fmt.Sprint(args...))
}

func Errorf(format string, args ...interface{}) {
	tagged(TagError).Error(fmt.Sprintf(format, args...))
}

// Query logs an executed query.
func Query(args ...interface{}) {
	tagged(TagQuery).Info(fmt.Sprint(args...))
}
