/*
SPDX-License-Identifier: GPL-3.0-or-later

Copyright (C) 2025 EvtShip Contributors

This file is part of EvtShip.

EvtShip is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EvtShip is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EvtShip. If not, see https://www.gnu.org/licenses/.
*/

// evtship/agent/internal/logger/logger.go
// Package logger is the process-wide leveled logger used by every
// other package. It wraps zerolog behind printf-style helpers so call
// sites stay short.

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var std = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// Init configures the global logger. The console writer on stderr is
// always active; appLogFile duplicates every record to a file and
// errorLogFile receives error-and-above records only. Empty paths
// disable the corresponding file.
func Init(appLogFile, errorLogFile, level string) error {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}

	if appLogFile != "" {
		f, err := openLogFile(appLogFile)
		if err != nil {
			return fmt.Errorf("open app log: %w", err)
		}
		writers = append(writers, f)
	}
	if errorLogFile != "" {
		f, err := openLogFile(errorLogFile)
		if err != nil {
			return fmt.Errorf("open error log: %w", err)
		}
		writers = append(writers, errorOnly{f})
	}

	std = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(level)).
		With().Timestamp().Logger()
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// errorOnly forwards error-and-above records to the wrapped writer and
// swallows everything else. Implements zerolog.LevelWriter so
// MultiLevelWriter routes by level.
type errorOnly struct{ w io.Writer }

func (e errorOnly) Write(p []byte) (int, error) { return len(p), nil }

func (e errorOnly) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l >= zerolog.ErrorLevel && l <= zerolog.PanicLevel {
		return e.w.Write(p)
	}
	return len(p), nil
}

// ParseLevel maps a config string onto a zerolog level. Unknown or
// empty values fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func Debug(format string, args ...any) { std.Debug().Msgf(format, args...) }

func Info(format string, args ...any) { std.Info().Msgf(format, args...) }

func Warn(format string, args ...any) { std.Warn().Msgf(format, args...) }

func Error(format string, args ...any) { std.Error().Msgf(format, args...) }

// Fatal logs the message and terminates the process.
func Fatal(format string, args ...any) { std.Fatal().Msgf(format, args...) }
