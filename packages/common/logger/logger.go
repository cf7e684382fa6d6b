package logger

import (
	"os"
	"sync/atomic"
)

var Debug atomic.Bool
var Trace atomic.Bool

// Silences stdout output. Errors and worse still reach stderr.
var Silent atomic.Bool

type Meta map[string]any

var wellKnownMetaProperties = []string{
	"addr",
	"method",
	"path",
	"entity",
	"request_id",
}

func createSuffixFromWellKnownMeta(m Meta) string {
	s := ""
	for _, prop := range wellKnownMetaProperties {
		if v, ok := m[prop].(string); ok {
			s += v + " "
		}
	}
	if s == "" {
		return ""
	}
	return " (" + s + ")"
}

func (m Meta) stringSuffix() string {
	if m == nil {
		return ""
	}

	return createSuffixFromWellKnownMeta(m)
}

type Logger interface {
	Log(entry *LogEntry)
}

// Returns false if log must not be processed
func preprocess(entry *LogEntry) bool {
	if entry.rawLevel == DebugLogLevel && !Debug.Load() {
		return false
	}

	if entry.rawLevel == TraceLogLevel && !Trace.Load() {
		return false
	}

	return true
}

// If log entry rawLevel is:
//   - FatalLogLevel: will call os.Exit(1)
//   - PanicLogLevel: will cause panic with entry.Message and entry.Error
func handleCritical(entry *LogEntry) {
	if entry.rawLevel == PanicLogLevel {
		panic(entry.Message + ": " + entry.Error)
	}

	if entry.rawLevel == FatalLogLevel {
		os.Exit(1)
	}
}

var Stdout = newStdoutLogger()
var Stderr = newStderrLogger()

// Default routes entries to stdout, errors and worse to stderr.
var Default Logger = defaultLogger{}

type defaultLogger struct {
	//
}

func (l defaultLogger) Log(entry *LogEntry) {
	if !preprocess(entry) {
		return
	}

	if entry.rawLevel >= ErrorLogLevel {
		Stderr.Log(entry)
	} else if !Silent.Load() {
		Stdout.Log(entry)
	}

	handleCritical(entry)
}

var Undefined = NewSource("UNDEFINED", Default)
