/*
Copyright 2023 The aurochs Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package log provides a logging abstraction for the format core.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines an interface for logging messages.
type Logger interface {

	// Printf logs a formatted string.
	Printf(format string, args ...interface{})

	// Println logs a line.
	Println(args ...interface{})
}

type logger struct {
	log Logger
}

// The package's defined loggers.
var (
	Info  = &logger{}
	Debug = &logger{}
	Trace = &logger{}
	Parse = &logger{}
	Read  = &logger{}
)

// SetInfoLogger sets the info logger.
func SetInfoLogger(log Logger) {
	Info.log = log
}

// SetDebugLogger sets the debug logger.
func SetDebugLogger(log Logger) {
	Debug.log = log
}

// SetTraceLogger sets the trace logger.
func SetTraceLogger(log Logger) {
	Trace.log = log
}

// SetParseLogger sets the parse logger.
func SetParseLogger(log Logger) {
	Parse.log = log
}

// SetReadLogger sets the read logger.
func SetReadLogger(log Logger) {
	Read.log = log
}

// InfoEnabled returns true if the info logger is set.
func InfoEnabled() bool {
	return Info.log != nil
}

// DebugEnabled returns true if the debug logger is set.
func DebugEnabled() bool {
	return Debug.log != nil
}

// TraceEnabled returns true if the trace logger is set.
func TraceEnabled() bool {
	return Trace.log != nil
}

// ParseEnabled returns true if the parse logger is set.
func ParseEnabled() bool {
	return Parse.log != nil
}

// ReadEnabled returns true if the read logger is set.
func ReadEnabled() bool {
	return Read.log != nil
}

// zapAdapter adapts a zap SugaredLogger to the Logger interface.
type zapAdapter struct {
	s *zap.SugaredLogger
}

func (a zapAdapter) Printf(format string, args ...interface{}) {
	a.s.Infof(format, args...)
}

func (a zapAdapter) Println(args ...interface{}) {
	a.s.Info(args...)
}

func newZapLogger(name string, lvl zapcore.Level) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return nil
	}
	return zapAdapter{l.Sugar().Named(name)}
}

// SetDefaultInfoLogger sets the default info logger.
func SetDefaultInfoLogger() {
	SetInfoLogger(newZapLogger("info", zapcore.InfoLevel))
}

// SetDefaultDebugLogger sets the default debug logger.
func SetDefaultDebugLogger() {
	SetDebugLogger(newZapLogger("debug", zapcore.DebugLevel))
}

// SetDefaultTraceLogger sets the default trace logger.
func SetDefaultTraceLogger() {
	SetTraceLogger(newZapLogger("trace", zapcore.DebugLevel))
}

// SetDefaultParseLogger sets the default parse logger.
func SetDefaultParseLogger() {
	SetParseLogger(newZapLogger("parse", zapcore.DebugLevel))
}

// SetDefaultReadLogger sets the default read logger.
func SetDefaultReadLogger() {
	SetReadLogger(newZapLogger("read", zapcore.DebugLevel))
}

// SetDefaultLoggers sets all loggers to their default logger.
func SetDefaultLoggers() {
	SetDefaultInfoLogger()
	SetDefaultDebugLogger()
	SetDefaultTraceLogger()
	SetDefaultParseLogger()
	SetDefaultReadLogger()
}

// DisableLoggers turns off all logging.
func DisableLoggers() {
	SetInfoLogger(nil)
	SetDebugLogger(nil)
	SetTraceLogger(nil)
	SetParseLogger(nil)
	SetReadLogger(nil)
}

// Printf writes a formatted message to the log.
func (l *logger) Printf(format string, args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Printf(format, args...)
}

// Println writes a line to the log.
func (l *logger) Println(args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Println(args...)
}
