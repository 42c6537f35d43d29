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

// evtship/agent/internal/logs/logsender/file.go

package logsender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/evtship/agent/internal/model"
)

// fileSink appends events to a local file or stdout. The json codec
// writes one full record per line; plain writes a human-readable
// summary line. Useful for debugging a collector setup before pointing
// the agent at a real backend.
type fileSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer // nil for stdout
	codec  string
	name   string
}

func newFileSink(path, codec string) (*fileSink, error) {
	if path == "" {
		return nil, errors.New("file output requires a path")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return &fileSink{w: f, closer: f, codec: codec, name: "file"}, nil
}

func newStdoutSink(codec string) (*fileSink, error) {
	return &fileSink{w: os.Stdout, codec: codec, name: "stdout"}, nil
}

func (s *fileSink) Name() string { return s.name }

func (s *fileSink) Publish(_ context.Context, payload *model.EventPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range payload.Events {
		rec := &payload.Events[i]
		var err error
		if s.codec == "json" {
			err = writeJSONLine(s.w, rec)
		} else {
			_, err = fmt.Fprintf(s.w, "%s %s %s %s: %s\n",
				rec.Timestamp.Format(time.RFC3339), rec.Host, rec.Path, rec.Level, rec.Message)
		}
		if err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}
	return nil
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func writeJSONLine(w io.Writer, rec *model.NormalizedEvent) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

var _ Sink = (*fileSink)(nil)
