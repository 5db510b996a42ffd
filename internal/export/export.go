package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
)

// Row is one report row as written to disk.
type Row struct {
	Key     string   `json:"key,omitempty"`
	Keyed   bool     `json:"-"`
	Fields  []string `json:"fields"`
	Updates int      `json:"updates,omitempty"`
}

// FormatFor picks a format from an explicit name or the path's extension.
func FormatFor(format, path string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case "csv", "":
		return FormatCSV, nil
	case "ndjson", "jsonl", "json":
		return FormatNDJSON, nil
	}
	return "", fmt.Errorf("export: unsupported format %q", format)
}

// Write stores rows at path in the given format.
func Write(path, format string, rows []Row) error {
	f, err := FormatFor(format, path)
	if err != nil {
		return err
	}
	if f == FormatNDJSON {
		return ToNDJSON(path, rows)
	}
	return ToCSV(path, rows)
}

// ToCSV writes a header of key plus c0..cN sized to the widest row.
func ToCSV(path string, rows []Row) error {
	if len(rows) == 0 {
		return errors.New("no rows")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	width := 0
	for _, r := range rows {
		if len(r.Fields) > width {
			width = len(r.Fields)
		}
	}
	header := make([]string, 0, width+1)
	header = append(header, "key")
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("c%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := make([]string, width+1)
		rec[0] = r.Key
		copy(rec[1:], r.Fields)
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func ToNDJSON(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
