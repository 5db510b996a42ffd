package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"logdam/internal/util/logx"
)

// FileSource reads a regular file from the start and keeps picking up
// appended bytes. A watcher on the parent directory notices rotation; a
// shrinking size is treated as truncation and reading restarts at zero.
type FileSource struct {
	path    string
	limit   int
	f       *os.File
	offset  int64
	rotated bool
	watcher *fsnotify.Watcher
	buf     []byte
}

func OpenFile(path string, limit int) (*FileSource, error) {
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	s := &FileSource{path: abs, limit: limit, f: f, buf: make([]byte, pumpChunk)}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logx.Warnf("ingest: watcher unavailable for %s: %v", abs, err)
		return s, nil
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		logx.Warnf("ingest: cannot watch %s: %v", filepath.Dir(abs), err)
		_ = w.Close()
		return s, nil
	}
	s.watcher = w
	return s, nil
}

func (s *FileSource) Name() string { return s.path }

func (s *FileSource) ReadAvailable() ([]byte, error) {
	s.drainEvents()
	if s.f == nil {
		if !s.reopen() {
			return nil, nil
		}
	}
	if st, err := s.f.Stat(); err == nil && st.Size() < s.offset {
		logx.Infof("ingest: %s truncated, rereading from start", s.path)
		if _, err := s.f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("ingest: seek %s: %w", s.path, err)
		}
		s.offset = 0
	}
	out, err := s.readToLimit()
	if err != nil {
		return out, err
	}
	if s.rotated && len(out) < s.limit {
		// old file drained; switch to the new one on the next poll
		_ = s.f.Close()
		s.f = nil
		s.rotated = false
	}
	return out, nil
}

func (s *FileSource) readToLimit() ([]byte, error) {
	var out []byte
	for len(out) < s.limit {
		want := s.limit - len(out)
		if want > len(s.buf) {
			want = len(s.buf)
		}
		n, err := s.f.Read(s.buf[:want])
		out = append(out, s.buf[:n]...)
		s.offset += int64(n)
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("ingest: read %s: %w", s.path, err)
		}
	}
	return out, nil
}

func (s *FileSource) drainEvents() {
	if s.watcher == nil {
		return
	}
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				s.watcher = nil
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				logx.Infof("ingest: %s rotated", s.path)
				s.rotated = true
			case ev.Has(fsnotify.Create):
				s.rotated = true
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				s.watcher = nil
				return
			}
			logx.Warnf("ingest: watch %s: %v", s.path, err)
		default:
			return
		}
	}
}

func (s *FileSource) reopen() bool {
	f, err := os.Open(s.path)
	if err != nil {
		return false
	}
	logx.Infof("ingest: reopened %s", s.path)
	s.f = f
	s.offset = 0
	s.rotated = false
	return true
}

func (s *FileSource) Close() error {
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
		s.watcher = nil
	}
	if s.f != nil {
		errs = append(errs, s.f.Close())
		s.f = nil
	}
	return errors.Join(errs...)
}
