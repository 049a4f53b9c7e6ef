// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

func formatFields(data []any) string {
	return strings.TrimSuffix(fmt.Sprintln(data...), "\n")
}

type LogLevel int

const (
	Error = LogLevel(iota)
	Warning
	Info
	Debug
)

func (level LogLevel) toZerolog() zerolog.Level {
	switch level {
	case Error:
		return zerolog.ErrorLevel
	case Warning:
		return zerolog.WarnLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

func ParseLevel(name string) (LogLevel, bool) {
	switch name {
	case "error":
		return Error, true
	case "warning", "warn":
		return Warning, true
	case "info":
		return Info, true
	case "debug":
		return Debug, true
	}
	return Info, false
}

var configLock = &sync.Mutex{}

type LoggingConfig struct {
	level LogLevel
}

type Logger struct {
	inner zerolog.Logger
}

var loggingConfigInstance *LoggingConfig

func GetLoggingConfig() *LoggingConfig {
	configLock.Lock()
	defer configLock.Unlock()
	if loggingConfigInstance == nil {
		loggingConfigInstance = &LoggingConfig{
			level: Info,
		}
	}
	return loggingConfigInstance
}

func SetLoggingConfig(level LogLevel) {
	loggingConfig := GetLoggingConfig()
	configLock.Lock()
	defer configLock.Unlock()
	loggingConfig.level = level
}

func GetLogger() *Logger {
	loggingConfig := GetLoggingConfig()
	configLock.Lock()
	level := loggingConfig.level
	configLock.Unlock()
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	inner := zerolog.New(writer).
		Level(level.toZerolog()).
		With().Timestamp().Logger()
	return &Logger{inner: inner}
}

func (logger Logger) Error(data ...any) {
	logger.inner.Error().Msg(formatFields(data))
}

func (logger Logger) Warn(data ...any) {
	logger.inner.Warn().Msg(formatFields(data))
}

func (logger Logger) Warning(data ...any) {
	logger.Warn(data...)
}

func (logger Logger) Info(data ...any) {
	logger.inner.Info().Msg(formatFields(data))
}

func (logger Logger) Debug(data ...any) {
	logger.inner.Debug().Msg(formatFields(data))
}

func (logger Logger) Errorf(format string, a ...any) {
	logger.inner.Error().Msgf(format, a...)
}

func (logger Logger) Warnf(format string, a ...any) {
	logger.inner.Warn().Msgf(format, a...)
}

func (logger Logger) Warningf(format string, a ...any) {
	logger.Warnf(format, a...)
}

func (logger Logger) Infof(format string, a ...any) {
	logger.inner.Info().Msgf(format, a...)
}

func (logger Logger) Debugf(format string, a ...any) {
	logger.inner.Debug().Msgf(format, a...)
}
