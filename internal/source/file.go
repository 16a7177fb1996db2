package source

import (
	"bufio"
	"os"
	"strings"

	"codeberg.org/mutker/telemetryd/internal/errors"
)

// FileSource reads one raw sample per poll from the first line of a file.
// The file is reopened on every read so refreshed values are picked up.
type FileSource struct {
	path string
}

// NewFile constructs a source over the given value file.
func NewFile(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Open() error {
	file, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(errors.ErrSourceOpen, err)
	}
	file.Close()

	return nil
}

func (s *FileSource) Read() (string, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return "", errors.Wrap(errors.ErrSourceRead, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", errors.Wrap(errors.ErrSourceRead, err)
		}
		return "", errors.WithMessage(errors.ErrSourceRead, "empty sample file")
	}

	return strings.TrimSpace(scanner.Text()), nil
}

func (s *FileSource) Close() error {
	return nil
}
