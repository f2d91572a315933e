// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stdlog

import (
	"io"
	"log"
	"os"

	rlog "github.com/301st/relay/log"
)

func Default() *Logger {
	return &Logger{
		log:   log.Default(),
		level: rlog.InfoLevel,
	}
}

// Option is a function that modifies the Logger.
type Option func(*Logger)

func New(cfg *rlog.Config, opts ...Option) *Logger {
	var w io.Writer = os.Stdout
	if cfg.File != nil {
		w = cfg.File
	}

	l := &Logger{
		log:   log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC),
		level: cfg.Level,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Logger implements the log.Logger interface using the standard log package.
type Logger struct {
	log   *log.Logger
	name  string
	level rlog.Level

	errorPfx string
	infoPfx  string
	debugPfx string

	onError func(name string)
}

func (sl Logger) Named(name string) *Logger { //nolint:gocritic // we pass by value to get a copy
	if sl.name != "" {
		name = sl.name + "." + name
	}
	sl.name = name

	if name != "" {
		name = "[" + name + "] "
	}

	sl.errorPfx = name + "[ERROR] "
	sl.infoPfx = name + "[INFO] "
	sl.debugPfx = name + "[DEBUG] "

	return &sl
}

func (sl *Logger) Errorf(format string, args ...any) {
	if sl.level < rlog.ErrorLevel {
		return
	}
	if sl.onError != nil {
		sl.onError(sl.name)
	}
	sl.log.Printf(sl.errorPfx+format, args...)
}

func (sl *Logger) Infof(format string, args ...any) {
	if sl.level < rlog.InfoLevel {
		return
	}
	sl.log.Printf(sl.infoPfx+format, args...)
}

func (sl *Logger) Debugf(format string, args ...any) {
	if sl.level < rlog.DebugLevel {
		return
	}
	sl.log.Printf(sl.debugPfx+format, args...)
}

// Unwrap returns the underlying log.Logger pointer.
func (sl *Logger) Unwrap() *log.Logger {
	return sl.log
}
