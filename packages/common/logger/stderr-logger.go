package logger

import (
	"log"
	"os"
)

// Satisfies Logger interface
type stderrLogger struct {
	logger *log.Logger
}

func newStderrLogger() stderrLogger {
	return stderrLogger{
		logger: log.New(os.Stderr, "", log.Ldate|log.Ltime),
	}
}

func (l stderrLogger) Log(entry *LogEntry) {
	msg := "[" + entry.Source + ": " + entry.Level + "] " + entry.Message

	if entry.Error != "" {
		msg += " - " + entry.Error
	}

	l.logger.Println(msg + entry.Meta.stringSuffix())
}
