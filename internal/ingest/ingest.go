package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"logdam/internal/loggen"
)

type SourceKind string

const (
	SourceStdin SourceKind = "stdin"
	SourceFile  SourceKind = "file"
	SourceDemo  SourceKind = "demo"
)

// DefaultReadLimit bounds the bytes handed out by one ReadAvailable call so
// a large backlog is spread across several frames.
const DefaultReadLimit = 1 << 20

type Options struct {
	Source    SourceKind
	Path      string
	Follow    bool
	ReadLimit int

	DemoFormat string
	DemoRate   float64 // lines per second
	DemoKeys   int
}

// Source is a non-blocking byte feed. ReadAvailable returns whatever is
// buffered right now; nil means nothing new.
type Source interface {
	Name() string
	ReadAvailable() ([]byte, error)
	Close() error
}

// Open builds the source described by opt. ctx bounds any background
// goroutines the source starts.
func Open(ctx context.Context, opt Options) (Source, error) {
	limit := opt.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	switch opt.Source {
	case SourceStdin:
		return NewReaderSource(ctx, "stdin", os.Stdin, limit), nil
	case SourceFile:
		if opt.Path == "" {
			return nil, errors.New("ingest: file source needs a path")
		}
		if opt.Follow {
			return NewTailSource(opt.Path)
		}
		return OpenFile(opt.Path, limit)
	case SourceDemo:
		gen, err := loggen.New(opt.DemoFormat, opt.DemoKeys, time.Now().UnixNano())
		if err != nil {
			return nil, err
		}
		return NewDemoSource(gen, opt.DemoRate), nil
	default:
		return nil, fmt.Errorf("ingest: unknown source kind %q", opt.Source)
	}
}
