// Package tabulate turns a byte stream into tables of rows under a
// swappable parsing strategy.
package tabulate

import (
	"fmt"

	"logdam/internal/model"
	"logdam/internal/parse"
	"logdam/internal/util/logx"
)

// Tabulator owns the running byte state: the unterminated tail of the last
// read, every chunk seen since the last replay, and chunks queued for replay.
// It is not safe for concurrent use; swap strategies between updates.
type Tabulator struct {
	config  parse.Config
	partial []byte
	history [][]byte
	replay  [][]byte
}

func New(cfg parse.Config) *Tabulator {
	return &Tabulator{config: cfg}
}

// Config returns the active strategy.
func (t *Tabulator) Config() parse.Config { return t.config }

// SetConfig installs a new strategy. Call Replay afterwards to reprocess
// the retained history under it.
func (t *Tabulator) SetConfig(cfg parse.Config) {
	logx.Infof("tabulate: strategy %s -> %s", name(t.config), name(cfg))
	t.config = cfg
}

// Replay queues every chunk seen since the last replay for reprocessing and
// forgets the partial record. The history list is drained, so chunks read
// live from here on are not replayed twice.
func (t *Tabulator) Replay() {
	// history only holds chunks older than anything still queued
	t.replay = append(t.history, t.replay...)
	t.history = nil
	t.partial = nil
	logx.Infof("tabulate: replay queued %d chunks", len(t.replay))
}

// Pending reports how many chunks still wait to be replayed.
func (t *Tabulator) Pending() int { return len(t.replay) }

// History returns the concatenated bytes retained since the last replay,
// including chunks still queued for replay.
func (t *Tabulator) History() []byte {
	var n int
	for _, c := range t.replay {
		n += len(c)
	}
	for _, c := range t.history {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range t.history {
		out = append(out, c...)
	}
	for _, c := range t.replay {
		out = append(out, c...)
	}
	return out
}

// Update pulls one chunk, either the head of the replay queue or whatever
// the source has available, and converts the complete records in it to a
// table. No bytes yields an empty table and no error.
func (t *Tabulator) Update() (model.Table, error) {
	chunk, err := t.next()
	if err != nil {
		return model.Table{}, err
	}
	if len(chunk) == 0 {
		return model.Table{}, nil
	}
	t.history = append(t.history, chunk)
	buf := make([]byte, 0, len(t.partial)+len(chunk))
	buf = append(buf, t.partial...)
	buf = append(buf, chunk...)
	records, remainder, err := t.config.ParseRecords(buf)
	if err != nil {
		return model.Table{}, fmt.Errorf("tabulate: %w", err)
	}
	t.partial = remainder
	if len(records) == 0 {
		return model.Table{}, nil
	}

	rows := make([]model.Row, 0, len(records))
	for _, rec := range records {
		row, ok := t.config.ParseFields(rec)
		if !ok {
			continue
		}
		rows = append(rows, row.Truncate())
	}
	return model.Table{Metadata: t.config.Metadata(records), Rows: rows}, nil
}

func (t *Tabulator) next() ([]byte, error) {
	if len(t.replay) > 0 {
		chunk := t.replay[0]
		t.replay = t.replay[1:]
		return chunk, nil
	}
	chunk, err := t.config.ReadAvailableBytes()
	if err != nil {
		return nil, fmt.Errorf("tabulate: read: %w", err)
	}
	return chunk, nil
}

func name(c parse.Config) string {
	if c == nil {
		return "<none>"
	}
	return c.Name()
}
