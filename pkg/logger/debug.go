package logger

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync/atomic"
)

// forcedDebug holds a selector applied in addition to DEBUG.
var forcedDebug atomic.Value

// EnableDebug selects namespaces on top of the DEBUG variable, "*" turns on
// all of them and "" clears the override.
func EnableDebug(selector string) {
	forcedDebug.Store(selector)
}

func debugSelector() string {
	sel := os.Getenv("DEBUG")
	if forced, _ := forcedDebug.Load().(string); forced != "" {
		if sel == "" {
			return forced
		}
		return forced + "," + sel
	}
	return sel
}

// DebugLogger prints namespaced debug output when DEBUG selects its namespace.
type DebugLogger struct {
	namespace string
}

// Debug returns the logger for a namespace such as "prisma:engine".
func Debug(namespace string) *DebugLogger {
	return &DebugLogger{namespace: namespace}
}

func (d *DebugLogger) Namespace() string {
	return d.namespace
}

// Enabled reports whether DEBUG or EnableDebug currently selects the namespace.
func (d *DebugLogger) Enabled() bool {
	return DebugEnabled(debugSelector(), d.namespace)
}

func (d *DebugLogger) Printf(format string, args ...interface{}) {
	if !d.Enabled() {
		return
	}
	Logger().WithField(namespaceField, d.namespace).Info(fmt.Sprintf(format, args...))
}

func (d *DebugLogger) Print(args ...interface{}) {
	if !d.Enabled() {
		return
	}
	Logger().WithField(namespaceField, d.namespace).Info(fmt.Sprint(args...))
}

// DebugEnabled matches namespace against a DEBUG selector: comma or space
// separated globs, a leading "-" excludes. Exclusions win.
func DebugEnabled(selector, namespace string) bool {
	if selector == "" {
		return false
	}
	fields := strings.FieldsFunc(selector, func(r rune) bool {
		return r == ',' || r == ' '
	})
	enabled := false
	for _, p := range fields {
		if strings.HasPrefix(p, "-") {
			if ok, _ := path.Match(p[1:], namespace); ok {
				return false
			}
			continue
		}
		if ok, _ := path.Match(p, namespace); ok {
			enabled = true
		}
	}
	return enabled
}
