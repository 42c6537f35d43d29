//go:build linux
// +build linux

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

// evtship/agent/internal/logs/logcollector/linux/journald_linux.go
// Package linuxcollector tails the systemd journal on Linux hosts.

package linuxcollector

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/coreos/go-systemd/v22/sdjournal"
	"github.com/evtship/agent/internal/config"
	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/telemetry"
	"github.com/evtship/agent/internal/utils"
)

// journalWaitTimeout bounds each journal wait so the reader can see
// the stop signal in time.
const journalWaitTimeout = 2 * time.Second

// cursorSaveEvery bounds replay after a crash; the cursor is also
// persisted on a clean Close.
const cursorSaveEvery = 100

// JournaldCollector streams journal entries through a background
// reader into a drain channel. It resumes from a persisted cursor
// when one is configured so a restart does not lose or replay events.
type JournaldCollector struct {
	journal    *sdjournal.Journal
	events     chan model.NormalizedEvent
	stop       chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	once       sync.Once
	host       string
	batchSize  int
	maxSize    int
	cursorFile string
	cursor     string
	unsaved    int
}

func (j *JournaldCollector) Name() string { return "journald" }

// NewJournaldCollector opens the journal and starts the reader. When
// the journal cannot be opened the returned collector is disabled and
// collects nothing; the agent keeps running.
func NewJournaldCollector(cfg *config.Config, host string) *JournaldCollector {
	logger.Info("Initializing journald source...")
	j, err := sdjournal.NewJournal()
	if err != nil {
		logger.Error("Failed to open systemd journal, source disabled: %v", err)
		return &JournaldCollector{}
	}

	// Watch warning and higher (0=emerg .. 4=warning). The matches
	// are OR-combined through disjunctions.
	for _, prio := range []string{"0", "1", "2", "3", "4"} {
		match := sdjournal.Match{Field: sdjournal.SD_JOURNAL_FIELD_PRIORITY, Value: prio}
		if err := j.AddMatch(match.String()); err != nil {
			logger.Warn("Failed to add journal priority match %s: %v", prio, err)
		}
		if err := j.AddDisjunction(); err != nil {
			logger.Warn("Failed to add journal disjunction: %v", err)
		}
	}

	collector := &JournaldCollector{
		journal:    j,
		events:     make(chan model.NormalizedEvent, cfg.Agent.LogCollection.BufferSize),
		stop:       make(chan struct{}),
		host:       host,
		batchSize:  cfg.Agent.LogCollection.BatchSize,
		maxSize:    cfg.Agent.LogCollection.MessageMax,
		cursorFile: cfg.Agent.LogCollection.JournalCursorFile,
	}

	collector.seekStart()

	collector.wg.Add(1)
	go collector.runReader()

	logger.Info("Journald source initialized and reader started.")
	return collector
}

// seekStart positions the read head: at the persisted cursor when one
// exists, otherwise just past the current tail so only new entries
// ship.
func (j *JournaldCollector) seekStart() {
	if j.cursorFile != "" {
		cursor, err := agentutils.LoadCursor(j.cursorFile)
		if err != nil {
			logger.Warn("Failed to load journal cursor from %s: %v", j.cursorFile, err)
		} else if cursor != "" {
			if err := j.journal.SeekCursor(cursor); err == nil {
				// The cursor points at the last shipped entry; skip it.
				if _, err := j.journal.NextSkip(1); err == nil {
					logger.Info("Journald source resuming from saved cursor")
					return
				}
			}
			logger.Warn("Saved journal cursor is stale, starting from tail")
		}
	}

	if err := j.journal.SeekTail(); err != nil {
		logger.Error("Failed to seek journal to tail: %v", err)
		return
	}
	// SeekTail parks the head past the end; step back onto the last
	// entry so the reader's Next() yields only entries after it.
	_, _ = j.journal.Previous()
}

func (j *JournaldCollector) runReader() {
	defer j.wg.Done()
	defer func() {
		j.mu.Lock()
		if j.journal != nil {
			j.journal.Close()
			j.journal = nil
		}
		j.mu.Unlock()
		close(j.events)
	}()

	for {
		ret := j.journal.Wait(journalWaitTimeout)

		select {
		case <-j.stop:
			return
		default:
		}

		if ret < 0 {
			logger.Error("Journal wait failed: %d. Stopping reader.", ret)
			return
		}

		for {
			n, err := j.journal.Next()
			if err != nil {
				logger.Error("Failed reading next journal entry: %v. Stopping reader.", err)
				return
			}
			if n == 0 {
				break
			}

			entry, err := j.journal.GetEntry()
			if err != nil {
				logger.Warn("Failed to read journal entry data, skipping: %v", err)
				continue
			}

			if entry.Fields["SYSLOG_IDENTIFIER"] == "kernel" {
				continue
			}

			rec := j.buildEvent(entry)

			select {
			case j.events <- rec:
				telemetry.EventsCollected.WithLabelValues("journald").Inc()
				j.rememberCursor(entry.Cursor)
			case <-j.stop:
				return
			default:
				telemetry.EventsDropped.WithLabelValues("journald").Inc()
				logger.Warn("Journald buffer full, dropping entry: %s", rec.Message)
			}
		}
	}
}

// rememberCursor records the last shipped position and persists it
// every cursorSaveEvery entries.
func (j *JournaldCollector) rememberCursor(cursor string) {
	if cursor == "" || j.cursorFile == "" {
		return
	}
	j.mu.Lock()
	j.cursor = cursor
	j.unsaved++
	flush := j.unsaved >= cursorSaveEvery
	if flush {
		j.unsaved = 0
	}
	j.mu.Unlock()

	if flush {
		if err := agentutils.SaveCursor(j.cursorFile, cursor); err != nil {
			logger.Warn("Failed to save journal cursor: %v", err)
		}
	}
}

// Collect drains buffered entries into batches without blocking.
func (j *JournaldCollector) Collect(ctx context.Context) ([][]model.NormalizedEvent, error) {
	j.mu.Lock()
	disabled := j.journal == nil && j.events == nil
	j.mu.Unlock()
	if disabled {
		return nil, nil
	}

	var allBatches [][]model.NormalizedEvent
	var batch []model.NormalizedEvent

collectLoop:
	for {
		select {
		case rec, ok := <-j.events:
			if !ok {
				break collectLoop
			}
			batch = append(batch, rec)
			if len(batch) >= j.batchSize {
				allBatches = append(allBatches, batch)
				batch = make([]model.NormalizedEvent, 0, j.batchSize)
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

// Close stops the reader, closes the journal handle and persists the
// final cursor.
func (j *JournaldCollector) Close() error {
	j.once.Do(func() {
		j.mu.Lock()
		if j.journal == nil {
			j.mu.Unlock()
			return
		}
		logger.Info("Closing journald source...")
		close(j.stop)
		j.mu.Unlock()

		j.wg.Wait()

		j.mu.Lock()
		cursor := j.cursor
		j.mu.Unlock()
		if cursor != "" && j.cursorFile != "" {
			if err := agentutils.SaveCursor(j.cursorFile, cursor); err != nil {
				logger.Warn("Failed to save journal cursor on close: %v", err)
			}
		}
		logger.Info("Journald source closed.")
	})
	return nil
}

// buildEvent maps one journal entry onto the shipping model. Journald
// has no two-level insertion grammar; structured journal fields land
// in Fields instead.
func (j *JournaldCollector) buildEvent(entry *sdjournal.JournalEntry) model.NormalizedEvent {
	ts := time.Unix(0, int64(entry.RealtimeTimestamp)*int64(time.Microsecond))

	msg := entry.Fields["MESSAGE"]
	if !utf8.ValidString(msg) {
		msg = strings.ToValidUTF8(msg, "�")
	}
	if j.maxSize > 0 && len(msg) > j.maxSize {
		msg = agentutils.TruncateString(msg, j.maxSize) + " [truncated]"
	}

	wanted := []string{
		"_SYSTEMD_UNIT", "_SYSTEMD_SLICE", "_EXE", "_CMDLINE",
		"_PID", "_UID", "MESSAGE_ID", "SYSLOG_IDENTIFIER", "_COMM",
	}
	fields := make(map[string]string)
	for _, k := range wanted {
		if v, ok := entry.Fields[k]; ok && v != "" {
			fields[strings.TrimPrefix(k, "_")] = v
		}
	}
	if v := entry.Fields["PRIORITY"]; v != "" {
		fields["PRIORITY"] = v
	}

	host := j.host
	if v := entry.Fields["_HOSTNAME"]; v != "" {
		host = v
	}

	return model.NormalizedEvent{
		Timestamp:    ts.UTC(),
		Host:         j.host,
		Path:         "journald",
		Type:         "journald",
		Level:        mapPriorityToLevel(entry.Fields["PRIORITY"]),
		Message:      msg,
		SourceName:   entry.Fields["SYSLOG_IDENTIFIER"],
		ComputerName: host,
		User:         journalUser(entry.Fields),
		Fields:       fields,
	}
}

// mapPriorityToLevel folds syslog priorities into the shared severity
// words.
func mapPriorityToLevel(priority string) string {
	switch priority {
	case "0", "1", "2":
		return "critical"
	case "3":
		return "error"
	case "4":
		return "warning"
	case "5", "6":
		return "info"
	case "7":
		return "debug"
	default:
		return "info"
	}
}

// journalUser picks the most specific user hint a journal entry
// carries.
func journalUser(fields map[string]string) string {
	for _, k := range []string{"USERNAME", "SUDO_USER", "_UID"} {
		if v := fields[k]; v != "" {
			return v
		}
	}
	return ""
}

var _ io.Closer = (*JournaldCollector)(nil)
