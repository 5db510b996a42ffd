package parse

import (
	"errors"
	"strings"

	"logdam/internal/model"
)

// Delimited is the generic delimited-text strategy.
type Delimited struct {
	delimitedRecords
	fixedKey
	recordDelimiter string
	fieldDelimiter  string
}

func NewDelimited(src ByteSource, opt Options) (*Delimited, error) {
	def := DefaultOptions()
	if opt.RecordDelimiter == "" {
		opt.RecordDelimiter = def.RecordDelimiter
	}
	if opt.FieldDelimiter == "" {
		opt.FieldDelimiter = def.FieldDelimiter
	}
	if opt.KeyColumn < NoKey || opt.KeyColumn >= model.MaxFields {
		return nil, errors.New("parse: key column out of range")
	}
	recs, err := newDelimitedRecords(src, opt.RecordDelimiter, opt.Encoding)
	if err != nil {
		return nil, err
	}
	return &Delimited{
		delimitedRecords: recs,
		fixedKey:         fixedKey{key: opt.KeyColumn},
		recordDelimiter:  opt.RecordDelimiter,
		fieldDelimiter:   opt.FieldDelimiter,
	}, nil
}

func (d *Delimited) Name() string { return LabelDefault }

func (d *Delimited) ParseFields(record string) (model.Row, bool) {
	return model.Row(strings.Split(record, d.fieldDelimiter)), true
}
