package report

import (
	"fmt"

	"logdam/internal/model"
)

// TableSource yields one table per poll.
type TableSource interface {
	Update() (model.Table, error)
}

// Target receives merged rows.
type Target interface {
	TryGetRowByKey(key Key) (int, bool)
	AppendRowForKey(key Key, row model.Row) error
	UpdateInPlace(pos int, row model.Row) error
}

// Aggregator pulls tables and upserts their rows into a Target by key.
type Aggregator struct {
	source TableSource
}

func NewAggregator(src TableSource) *Aggregator {
	return &Aggregator{source: src}
}

// Update merges the next table into t and returns it unchanged. Rows
// without a key column in the metadata are always appended.
func (a *Aggregator) Update(t Target) (model.Table, error) {
	table, err := a.source.Update()
	if err != nil {
		return table, err
	}
	keyCol, keyed := table.Metadata.Key()
	for _, row := range table.Rows {
		row = row.Truncate()
		var key Key
		if keyed {
			if keyCol >= len(row) {
				return table, fmt.Errorf("report: %w: column %d of %q", ErrMissingKey, keyCol, []string(row))
			}
			key = KeyOf(row[keyCol])
		}
		if pos, ok := t.TryGetRowByKey(key); ok {
			if err := t.UpdateInPlace(pos, row); err != nil {
				return table, err
			}
			continue
		}
		if err := t.AppendRowForKey(key, row); err != nil {
			return table, err
		}
	}
	return table, nil
}
