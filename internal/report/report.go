// Package report merges tables into one cumulative keyed report and tracks
// the highlight state of every cell.
package report

import (
	"errors"
	"fmt"

	"logdam/internal/model"
	"logdam/internal/util/logx"
)

var (
	// ErrMissingKey means a row is too short to hold the key column.
	ErrMissingKey = errors.New("row is missing its key column")
	// ErrDuplicateKey means the insert path saw a key already indexed.
	ErrDuplicateKey = errors.New("row key already indexed")
)

// Key is an optional row key. The zero Key means "no key".
type Key struct {
	Value string
	Valid bool
}

func KeyOf(s string) Key { return Key{Value: s, Valid: true} }

func (k Key) String() string {
	if !k.Valid {
		return "<none>"
	}
	return k.Value
}

// Report is the ordered collection of rows seen so far, unique by key.
// Current values live in rows; every value a keyed row has held lives in a
// separate append-only history log per key.
type Report struct {
	agg *Aggregator

	rows    []model.Row
	rowKeys []Key
	index   map[string]int
	history map[string][]model.Row

	animators map[Cell]*Animator
	paint     map[Cell]Paint

	frame         int
	lastDataFrame int
}

func New(agg *Aggregator) *Report {
	r := &Report{agg: agg}
	r.Clear()
	return r
}

// Clear drops every row, key, history entry and animation and rewinds the
// frame clock.
func (r *Report) Clear() {
	r.rows = nil
	r.rowKeys = nil
	r.index = map[string]int{}
	r.history = map[string][]model.Row{}
	r.animators = map[Cell]*Animator{}
	r.paint = map[Cell]Paint{}
	r.frame = 0
	r.lastDataFrame = 0
}

// TryGetRowByKey returns the position of the row holding key.
func (r *Report) TryGetRowByKey(key Key) (int, bool) {
	if !key.Valid {
		return 0, false
	}
	pos, ok := r.index[key.Value]
	return pos, ok
}

// AppendRowForKey adds row at the end of the report, indexing it under key
// when key is valid. Every cell of the new row starts a "new" animation.
func (r *Report) AppendRowForKey(key Key, row model.Row) error {
	if key.Valid {
		if _, dup := r.index[key.Value]; dup {
			return fmt.Errorf("report: %w: %q", ErrDuplicateKey, key.Value)
		}
	}
	pos := len(r.rows)
	stored := row.Clone()
	r.rows = append(r.rows, stored)
	r.rowKeys = append(r.rowKeys, key)
	if key.Valid {
		r.index[key.Value] = pos
		r.history[key.Value] = append(r.history[key.Value], stored.Clone())
	}
	for col := range stored {
		r.animate(NewAnimator(Cell{Row: pos, Column: col}, r.frame, true, false))
	}
	return nil
}

// UpdateInPlace overwrites the row at pos with the incoming values for every
// column both rows have. Changed cells blink; unchanged ones are marked
// recent. The full incoming row is appended to the row key's history.
func (r *Report) UpdateInPlace(pos int, row model.Row) error {
	if pos < 0 || pos >= len(r.rows) {
		return fmt.Errorf("report: row %d out of range (%d rows)", pos, len(r.rows))
	}
	existing := r.rows[pos]
	n := len(existing)
	if len(row) < n {
		n = len(row)
	}
	for col := 0; col < n; col++ {
		changed := existing[col] != row[col]
		if changed {
			existing[col] = row[col]
		}
		r.animate(NewAnimator(Cell{Row: pos, Column: col}, r.frame, false, changed))
	}
	if key := r.rowKeys[pos]; key.Valid {
		r.history[key.Value] = append(r.history[key.Value], row.Clone())
	}
	return nil
}

// animate registers a, superseding any animator already on its cell.
func (r *Report) animate(a *Animator) {
	r.animators[a.Cell()] = a
}

// Update pulls and merges the next table, then advances every animation by
// one frame. A merge error is returned before the clock moves; rows merged
// before the failure stay merged.
func (r *Report) Update() (model.Table, error) {
	table, err := r.agg.Update(r)
	if err != nil {
		return table, err
	}
	if !table.Empty() {
		r.lastDataFrame = r.frame
	}
	for cell, a := range r.animators {
		p, painted, done := a.Animate(r.frame, r.lastDataFrame)
		if painted {
			if p.Normal() {
				delete(r.paint, cell)
			} else {
				r.paint[cell] = p
			}
		}
		if done {
			delete(r.animators, cell)
		}
	}
	r.frame++
	if !table.Empty() {
		logx.Debugf("report: merged %d rows, %d rows total, %d animating", len(table.Rows), len(r.rows), len(r.animators))
	}
	return table, nil
}

func (r *Report) Len() int { return len(r.rows) }

// Row returns the current values of row i. Callers must not modify it.
func (r *Report) Row(i int) model.Row { return r.rows[i] }

// RowKey returns the key row i was indexed under.
func (r *Report) RowKey(i int) Key { return r.rowKeys[i] }

// Width is the widest row's field count.
func (r *Report) Width() int {
	w := 0
	for _, row := range r.rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// History returns every row value recorded for key, oldest first.
func (r *Report) History(key string) []model.Row {
	return r.history[key]
}

// Paint returns the current look of a cell.
func (r *Report) Paint(row, col int) Paint {
	if p, ok := r.paint[Cell{Row: row, Column: col}]; ok {
		return p
	}
	return normalPaint
}

// Animating is the number of live animators.
func (r *Report) Animating() int { return len(r.animators) }

// Animator returns the live animator on a cell, if any.
func (r *Report) Animator(row, col int) (*Animator, bool) {
	a, ok := r.animators[Cell{Row: row, Column: col}]
	return a, ok
}

func (r *Report) Frame() int { return r.frame }

func (r *Report) LastDataFrame() int { return r.lastDataFrame }
