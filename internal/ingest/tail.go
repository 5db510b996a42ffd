package ingest

import (
	"fmt"
	"io"

	"github.com/nxadm/tail"
)

// TailSource follows a file from its current end, surviving rotation.
type TailSource struct {
	path string
	t    *tail.Tail
}

func NewTailSource(path string) (*TailSource, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
		Poll:      true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: tail %s: %w", path, err)
	}
	return &TailSource{path: path, t: t}, nil
}

func (s *TailSource) Name() string { return s.path }

// ReadAvailable drains lines tail has already produced, each terminated
// with a newline again.
func (s *TailSource) ReadAvailable() ([]byte, error) {
	var out []byte
	for len(out) < DefaultReadLimit {
		select {
		case l, ok := <-s.t.Lines:
			if !ok {
				return out, s.t.Err()
			}
			if l.Err != nil {
				return out, fmt.Errorf("ingest: tail %s: %w", s.path, l.Err)
			}
			out = append(out, l.Text...)
			out = append(out, '\n')
		default:
			return out, nil
		}
	}
	return out, nil
}

func (s *TailSource) Close() error {
	err := s.t.Stop()
	s.t.Cleanup()
	return err
}
