/*
Copyright 2026 The Tibia-QueryManager Authors.
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

// Package logging wraps logrus with the small set of level-based helpers
// the rest of the query manager calls, mirroring the shape of a
// process-wide logger used throughout the codebase.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses and applies a textual log level ("debug", "info", "warn",
// "error"); unknown levels fall back to "info" with a warning.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		base.Warnf("unknown log level %q, defaulting to info", level)
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
}

func Debug(args ...interface{})            { base.Debug(args...) }
func Debugf(format string, a ...interface{}) { base.Debugf(format, a...) }
func Info(args ...interface{})             { base.Info(args...) }
func Infof(format string, a ...interface{})  { base.Infof(format, a...) }
func Warn(args ...interface{})             { base.Warn(args...) }
func Warnf(format string, a ...interface{})  { base.Warnf(format, a...) }
func Error(args ...interface{})            { base.Error(args...) }
func Errorf(format string, a ...interface{}) { base.Errorf(format, a...) }
func Fatal(args ...interface{})            { base.Fatal(args...) }
func Fatalf(format string, a ...interface{}) { base.Fatalf(format, a...) }

// WithField returns a logrus entry for structured call sites that want to
// attach a field (e.g. worker id, connection address) to a burst of log
// lines.
func WithField(key string, value interface{}) *logrus.Entry {
	return base.WithField(key, value)
}
