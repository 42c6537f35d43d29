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

// evtship/agent/internal/logs/logcollector/file/file.go
// Package filecollector follows plain log files on any platform. Each
// configured path gets its own tailer; lines from all of them feed one
// shared drain channel.

package filecollector

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/telemetry"
	"github.com/evtship/agent/internal/utils"
	"github.com/nxadm/tail"
)

// FileCollector tails the configured files and batches their lines as
// normalized events.
type FileCollector struct {
	events  chan model.NormalizedEvent
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	tailers []*tail.Tail

	host      string
	batchSize int
	maxSize   int
}

func (c *FileCollector) Name() string { return "file" }

// NewFileCollector starts one tailer per configured path. Paths that
// cannot be tailed are skipped; rotation is handled by reopening.
func NewFileCollector(cfg *config.Config, host string) *FileCollector {
	c := &FileCollector{
		events:    make(chan model.NormalizedEvent, cfg.Agent.LogCollection.BufferSize),
		stop:      make(chan struct{}),
		host:      host,
		batchSize: cfg.Agent.LogCollection.BatchSize,
		maxSize:   cfg.Agent.LogCollection.MessageMax,
	}

	for _, path := range cfg.Agent.LogCollection.Files {
		t, err := tail.TailFile(path, tail.Config{
			Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
			ReOpen:    true,
			MustExist: false,
			Follow:    true,
			Logger:    tail.DiscardingLogger,
		})
		if err != nil {
			logger.Error("Failed to tail %s, skipping: %v", path, err)
			continue
		}
		c.tailers = append(c.tailers, t)
		c.wg.Add(1)
		go c.runTailing(t)
		logger.Info("Started tailing file: %s", path)
	}

	return c
}

func (c *FileCollector) runTailing(t *tail.Tail) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stop:
			return
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Err(); err != nil {
					logger.Error("Tailing error on %s: %v", t.Filename, err)
				}
				return
			}
			if line.Err != nil {
				logger.Warn("Error reading line from %s: %v", t.Filename, line.Err)
				continue
			}

			rec := c.buildEvent(t.Filename, line)
			select {
			case c.events <- rec:
				telemetry.EventsCollected.WithLabelValues("file").Inc()
			case <-c.stop:
				return
			default:
				telemetry.EventsDropped.WithLabelValues("file").Inc()
				logger.Warn("File buffer full for %s, dropping line", t.Filename)
			}
		}
	}
}

// Collect drains buffered lines into batches without blocking.
func (c *FileCollector) Collect(ctx context.Context) ([][]model.NormalizedEvent, error) {
	var allBatches [][]model.NormalizedEvent
	var batch []model.NormalizedEvent

collectLoop:
	for {
		select {
		case rec, ok := <-c.events:
			if !ok {
				break collectLoop
			}
			batch = append(batch, rec)
			if len(batch) >= c.batchSize {
				allBatches = append(allBatches, batch)
				batch = make([]model.NormalizedEvent, 0, c.batchSize)
			}
		case <-ctx.Done():
			if len(batch) > 0 {
				allBatches = append(allBatches, batch)
			}
			return allBatches, ctx.Err()
		default:
			break collectLoop
		}
	}

	if len(batch) > 0 {
		allBatches = append(allBatches, batch)
	}

	return allBatches, nil
}

// Close stops every tailer and waits for the readers to drain out.
func (c *FileCollector) Close() error {
	c.once.Do(func() {
		close(c.stop)
		for _, t := range c.tailers {
			_ = t.Stop()
		}
		c.wg.Wait()
		for _, t := range c.tailers {
			t.Cleanup()
		}
		close(c.events)
	})
	return nil
}

func (c *FileCollector) buildEvent(path string, line *tail.Line) model.NormalizedEvent {
	msg := line.Text
	if !utf8.ValidString(msg) {
		msg = strings.ToValidUTF8(msg, "�")
	}
	if c.maxSize > 0 && len(msg) > c.maxSize {
		msg = agentutils.TruncateString(msg, c.maxSize) + " [truncated]"
	}

	ts := line.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	return model.NormalizedEvent{
		Timestamp:  ts.UTC(),
		Host:       c.host,
		Path:       path,
		Type:       "file",
		Level:      detectSeverity(msg),
		Message:    msg,
		SourceName: filepath.Base(path),
	}
}

// detectSeverity classifies a line by keyword. Plain files carry no
// structured level, so this is a best guess.
func detectSeverity(msg string) string {
	l := strings.ToLower(msg)
	switch {
	case strings.Contains(l, "error") || strings.Contains(l, "denied"):
		return "error"
	case strings.Contains(l, "failed") || strings.Contains(l, "invalid"):
		return "warning"
	default:
		return "info"
	}
}

var _ io.Closer = (*FileCollector)(nil)
