package sink

import (
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/record"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// FileSink appends the canonical record text to a log file. The file handle
// is exclusively owned by the sink and released on Close.
type FileSink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewFile opens (or creates) the log file in append mode.
func NewFile(path string) (*FileSink, error) {
	if path == "" {
		return nil, errors.WithMessage(errors.ErrSinkInit, "file sink requires a path")
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errors.Wrap(errors.ErrSinkInit, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSinkInit, err)
	}

	return &FileSink{
		path: path,
		file: file,
	}, nil
}

func (s *FileSink) Write(rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New(errors.ErrSinkWrite)
	}

	if _, err := s.file.WriteString(rec.Text() + "\n"); err != nil {
		return errors.Wrap(errors.ErrSinkWrite, err)
	}

	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	if err != nil {
		return errors.Wrap(errors.ErrSinkClose, err)
	}

	return nil
}

// Path returns the backing file path.
func (s *FileSink) Path() string {
	return s.path
}
