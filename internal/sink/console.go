package sink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"codeberg.org/mutker/telemetryd/internal/record"
)

// ConsoleSink writes the canonical record text to standard output, one line
// per record.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole constructs a sink backed by stdout.
func NewConsole() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout}
}

func (s *ConsoleSink) Write(rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintln(s.out, rec.Text())

	return err
}

func (s *ConsoleSink) Close() error {
	return nil
}
