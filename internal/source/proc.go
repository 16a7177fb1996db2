package source

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"codeberg.org/mutker/telemetryd/internal/errors"
)

const (
	defaultStatPath    = "/proc/stat"
	defaultMeminfoPath = "/proc/meminfo"
)

// cpuStats holds the cumulative jiffy counters from the aggregate cpu line.
type cpuStats struct {
	user, nice, system, idle, iowait, irq, softirq, steal uint64
}

func (c cpuStats) total() uint64 {
	return c.user + c.nice + c.system + c.idle + c.iowait + c.irq + c.softirq + c.steal
}

func (c cpuStats) idleTime() uint64 {
	return c.idle + c.iowait
}

// CPUSource derives CPU utilization from consecutive /proc/stat reads.
// The first read has no baseline and reports zero.
type CPUSource struct {
	path      string
	prev      cpuStats
	firstRead bool
}

// NewCPU constructs a source over /proc/stat.
func NewCPU() *CPUSource {
	return NewCPUFromPath(defaultStatPath)
}

// NewCPUFromPath constructs a CPU source over an alternate stat file.
func NewCPUFromPath(path string) *CPUSource {
	return &CPUSource{
		path:      path,
		firstRead: true,
	}
}

func (s *CPUSource) Open() error {
	file, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(errors.ErrSourceOpen, err)
	}
	file.Close()

	return nil
}

func (s *CPUSource) Read() (string, error) {
	curr, err := s.readStats()
	if err != nil {
		return "", err
	}

	prev := s.prev
	s.prev = curr

	if s.firstRead {
		s.firstRead = false
		return formatPercent(0), nil
	}

	totalDiff := curr.total() - prev.total()
	if totalDiff == 0 {
		return formatPercent(0), nil
	}
	idleDiff := curr.idleTime() - prev.idleTime()

	usage := float64(totalDiff-idleDiff) / float64(totalDiff) * 100

	return formatPercent(usage), nil
}

func (s *CPUSource) readStats() (cpuStats, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return cpuStats{}, errors.Wrap(errors.ErrSourceRead, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return cpuStats{}, errors.WithMessage(errors.ErrSourceRead, "empty stat file")
	}

	fields := strings.Fields(scanner.Text())
	if len(fields) < 9 || fields[0] != "cpu" {
		return cpuStats{}, errors.WithData(errors.ErrSourceRead, scanner.Text())
	}

	var stats cpuStats
	for i, dst := range []*uint64{
		&stats.user, &stats.nice, &stats.system, &stats.idle,
		&stats.iowait, &stats.irq, &stats.softirq, &stats.steal,
	} {
		value, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return cpuStats{}, errors.Wrap(errors.ErrSourceRead, err)
		}
		*dst = value
	}

	return stats, nil
}

func (s *CPUSource) Close() error {
	return nil
}

// RAMSource derives memory utilization from MemTotal and MemAvailable in
// /proc/meminfo.
type RAMSource struct {
	path string
}

// NewRAM constructs a source over /proc/meminfo.
func NewRAM() *RAMSource {
	return NewRAMFromPath(defaultMeminfoPath)
}

// NewRAMFromPath constructs a RAM source over an alternate meminfo file.
func NewRAMFromPath(path string) *RAMSource {
	return &RAMSource{path: path}
}

func (s *RAMSource) Open() error {
	file, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(errors.ErrSourceOpen, err)
	}
	file.Close()

	return nil
}

func (s *RAMSource) Read() (string, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return "", errors.Wrap(errors.ErrSourceRead, err)
	}
	defer file.Close()

	var memTotal, memAvailable uint64
	var foundTotal, foundAvailable bool

	scanner := bufio.NewScanner(file)
	for scanner.Scan() && !(foundTotal && foundAvailable) {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			memTotal, err = parseMeminfoLine(line)
			foundTotal = err == nil
		case strings.HasPrefix(line, "MemAvailable:"):
			memAvailable, err = parseMeminfoLine(line)
			foundAvailable = err == nil
		}
		if err != nil {
			return "", err
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(errors.ErrSourceRead, err)
	}

	if !foundTotal || !foundAvailable || memTotal == 0 {
		return "", errors.WithMessage(errors.ErrSourceRead, "meminfo missing MemTotal or MemAvailable")
	}

	usage := float64(memTotal-memAvailable) / float64(memTotal) * 100

	return formatPercent(usage), nil
}

func parseMeminfoLine(line string) (uint64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, errors.WithData(errors.ErrSourceRead, line)
	}

	value, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrSourceRead, err)
	}

	return value, nil
}

func (s *RAMSource) Close() error {
	return nil
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
