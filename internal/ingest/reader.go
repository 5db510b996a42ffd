package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
)

const pumpChunk = 32 * 1024

// ReaderSource adapts a blocking io.Reader. A pump goroutine moves chunks
// into a buffered channel which ReadAvailable drains without blocking.
type ReaderSource struct {
	name   string
	limit  int
	chunks chan []byte
	cancel context.CancelFunc

	mu      sync.Mutex
	err     error
	pending []byte
	done    bool
}

func NewReaderSource(ctx context.Context, name string, r io.Reader, limit int) *ReaderSource {
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &ReaderSource{name: name, limit: limit, chunks: make(chan []byte, 256), cancel: cancel}
	go s.pump(ctx, r)
	return s
}

func (s *ReaderSource) pump(ctx context.Context, r io.Reader) {
	defer close(s.chunks)
	buf := make([]byte, pumpChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}
	}
}

func (s *ReaderSource) Name() string { return s.name }

// ReadAvailable returns buffered bytes, at most limit of them. A read error
// from the underlying reader is returned once, after every byte read before
// it has been delivered. EOF is not an error.
func (s *ReaderSource) ReadAvailable() ([]byte, error) {
	out := s.pending
	s.pending = nil
loop:
	for len(out) < s.limit {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				s.done = true
				break loop
			}
			out = append(out, chunk...)
		default:
			break loop
		}
	}
	if len(out) > s.limit {
		s.pending = out[s.limit:]
		out = out[:s.limit]
	}
	if len(out) > 0 {
		return out, nil
	}
	if s.done {
		s.mu.Lock()
		err := s.err
		s.err = nil
		s.mu.Unlock()
		return nil, err
	}
	return nil, nil
}

// Exhausted reports whether the reader hit EOF and every byte was handed out.
func (s *ReaderSource) Exhausted() bool {
	return s.done && len(s.pending) == 0
}

func (s *ReaderSource) Close() error {
	s.cancel()
	return nil
}
