package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/telemetryd/internal/errors"
)

const fileName = "telemetryd.pid"

func path() string {
	return filepath.Join(os.TempDir(), fileName)
}

// Write claims the PID file for this process. A live daemon holding the file
// fails the claim with ErrAlreadyRunning; a stale file left by a dead process
// is overwritten.
func Write() error {
	other, err := runningInstance()
	if err != nil {
		return err
	}
	if other != 0 {
		return errors.WithData(errors.ErrAlreadyRunning, other)
	}

	if err := os.WriteFile(path(), []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errors.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// runningInstance returns the PID recorded in the file if that process is
// still alive, zero otherwise. A missing or garbled file counts as stale; a
// file that exists but cannot be read is an error.
func runningInstance() (int, error) {
	data, err := os.ReadFile(path())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(errors.ErrInternal, err)
	}

	recorded, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || recorded <= 0 {
		return 0, nil
	}

	process, err := os.FindProcess(recorded)
	if err != nil {
		return 0, nil
	}
	if process.Signal(syscall.Signal(0)) != nil {
		return 0, nil
	}

	return recorded, nil
}

// Remove releases the PID file. A missing file is not an error.
func Remove() error {
	if err := os.Remove(path()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrInternal, err)
	}

	return nil
}
