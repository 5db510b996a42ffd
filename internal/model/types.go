package model

// MaxFields caps the number of fields kept per row. Excess fields are
// dropped silently; this bounds display cost, it is not a parse failure.
const MaxFields = 125

// Row is the ordered field sequence derived from one record.
type Row []string

// Truncate returns r capped at MaxFields.
func (r Row) Truncate() Row {
	if len(r) > MaxFields {
		return r[:MaxFields]
	}
	return r
}

// Clone returns a copy that does not share the backing array.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Metadata describes a Table. A zero Metadata has no key column, meaning
// rows are always appended and never merged.
type Metadata struct {
	KeyColumn int  `json:"key"`
	Keyed     bool `json:"keyed"`
}

// KeyMetadata returns metadata naming column as the row key.
func KeyMetadata(column int) Metadata {
	return Metadata{KeyColumn: column, Keyed: true}
}

// Key reports the key column index, if any.
func (m Metadata) Key() (int, bool) {
	return m.KeyColumn, m.Keyed
}

// Table is one poll's batch of rows plus metadata.
type Table struct {
	Metadata Metadata
	Rows     []Row
}

// Empty reports whether the table carries no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }
