package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Line Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stdout
)

// SetLogOutput redirects all loggers created by CreateLogger to w
func SetLogOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// lineLogger writes one "time LEVEL | name | message" line per call
type lineLogger struct {
	name  string
	level logger.LogLevel
}

func (l *lineLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *lineLogger) Debugf(format string, args ...interface{}) {
	l.write(logger.DEBUG, "DEBUG", format, args)
}

func (l *lineLogger) Infof(format string, args ...interface{}) {
	l.write(logger.INFO, "INFO", format, args)
}

func (l *lineLogger) Warningf(format string, args ...interface{}) {
	l.write(logger.WARNING, "WARN", format, args)
}

func (l *lineLogger) Errorf(format string, args ...interface{}) {
	l.write(logger.ERROR, "ERROR", format, args)
}

func (l *lineLogger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.write(logger.CRITICAL, "PANIC", "%s", []interface{}{msg})
	panic(msg)
}

func (l *lineLogger) write(level logger.LogLevel, tag string, format string, args []interface{}) {
	if l.level < level {
		return
	}
	line := fmt.Sprintf("%s %-5s | %-15s | %s\n",
		time.Now().Format("2006/01/02 15:04:05"), tag, l.name, fmt.Sprintf(format, args...))

	outputMu.Lock()
	defer outputMu.Unlock()
	_, _ = io.WriteString(output, line)
}

// CreateLogger implements the logger.Factory interface, new loggers start at INFO
func CreateLogger(pkgName string) logger.ILogger {
	return &lineLogger{
		name:  pkgName,
		level: logger.INFO,
	}
}

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// LoggerNames lists the named loggers used by kvgate
var LoggerNames = []string{
	"store",
	"service",
	"pipeline",
	"rpc",
	"transport/rpc",
	"gateway",
}

// InitLoggers installs the line logger factory and sets the level of all named loggers
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
