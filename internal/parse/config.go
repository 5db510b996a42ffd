package parse

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"logdam/internal/model"
)

var (
	ErrUnknownStrategy = errors.New("unknown parsing strategy")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// ByteSource is the non-blocking input boundary: it returns whatever bytes
// are available right now, or none.
type ByteSource interface {
	ReadAvailable() ([]byte, error)
}

// Config is a parsing strategy: how bytes become records, records become
// rows, and which column keys a row.
type Config interface {
	Name() string
	ReadAvailableBytes() ([]byte, error)
	// ParseRecords returns every complete record in buf, decoded, plus the
	// raw unterminated remainder to prefix to the next read.
	ParseRecords(buf []byte) (records []string, remainder []byte, err error)
	// ParseFields returns false when the record should be dropped.
	ParseFields(record string) (model.Row, bool)
	Metadata(records []string) model.Metadata
}

// Options tune the generic delimited-text strategy. Canned strategies only
// honour Encoding.
type Options struct {
	RecordDelimiter string
	FieldDelimiter  string
	KeyColumn       int
	Encoding        string
}

func DefaultOptions() Options {
	return Options{RecordDelimiter: "\n", FieldDelimiter: "\t", KeyColumn: 0, Encoding: "utf-8"}
}

// delimitedRecords reads from a source and splits on a record delimiter.
// Splitting happens on the encoded delimiter in byte space so a multi-byte
// character cut by a read boundary stays intact in the remainder.
type delimitedRecords struct {
	source    ByteSource
	delimiter []byte
	enc       encoding.Encoding
}

func newDelimitedRecords(src ByteSource, delimiter, encName string) (delimitedRecords, error) {
	if delimiter == "" {
		return delimitedRecords{}, errors.New("parse: empty record delimiter")
	}
	if encName == "" {
		encName = "utf-8"
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		return delimitedRecords{}, fmt.Errorf("parse: %w: %s", ErrUnknownEncoding, encName)
	}
	delim, err := enc.NewEncoder().Bytes([]byte(delimiter))
	if err != nil {
		return delimitedRecords{}, fmt.Errorf("parse: encode delimiter: %w", err)
	}
	return delimitedRecords{source: src, delimiter: delim, enc: enc}, nil
}

func (d delimitedRecords) ReadAvailableBytes() ([]byte, error) {
	if d.source == nil {
		return nil, nil
	}
	return d.source.ReadAvailable()
}

func (d delimitedRecords) ParseRecords(buf []byte) ([]string, []byte, error) {
	parts := bytes.Split(buf, d.delimiter)
	last := len(parts) - 1
	records := make([]string, 0, last)
	dec := d.enc.NewDecoder()
	for _, p := range parts[:last] {
		s, err := dec.Bytes(p)
		if err != nil {
			return nil, nil, fmt.Errorf("parse: decode record: %w", err)
		}
		records = append(records, string(s))
	}
	remainder := make([]byte, len(parts[last]))
	copy(remainder, parts[last])
	return records, remainder, nil
}

// NoKey as a key column means rows are never merged, only appended.
const NoKey = -1

// fixedKey keys every table on one static column, or on none at all.
type fixedKey struct {
	key int
}

func (f fixedKey) Metadata([]string) model.Metadata {
	if f.key < 0 {
		return model.Metadata{}
	}
	return model.KeyMetadata(f.key)
}

// Describe renders a one-line summary of a strategy.
func Describe(c Config) string {
	md := c.Metadata(nil)
	key := "none"
	if k, ok := md.Key(); ok {
		key = fmt.Sprint(k)
	}
	extra := ""
	if d, ok := c.(*Delimited); ok {
		extra = fmt.Sprintf(" record=%s field=%s", quote(d.recordDelimiter), quote(d.fieldDelimiter))
	}
	return fmt.Sprintf("%-8s key=%s%s", c.Name(), key, extra)
}

func quote(s string) string {
	r := strings.NewReplacer("\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
