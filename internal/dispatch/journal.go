package dispatch

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/tgifai/thursday/internal/pkg/logs"
)

// Journal appends dispatch reports as JSON lines.
type Journal struct {
	path string
	mu   sync.Mutex
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) Append(r *Report) error {
	raw, err := sonic.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// Recent returns up to n reports, newest last. n <= 0 returns all.
func (j *Journal) Recent(n int) ([]Report, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	lines, err := j.readLines()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	out := make([]Report, 0, len(lines))
	for _, line := range lines {
		var r Report
		if err := sonic.Unmarshal(line, &r); err != nil {
			logs.Warn("[journal] skip undecodable line in %s: %v", j.path, err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Compact keeps the newest keep lines (tmp + rename).
func (j *Journal) Compact(keep int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	lines, err := j.readLines()
	if err != nil || len(lines) <= keep {
		return err
	}
	lines = lines[len(lines)-keep:]

	var buf bytes.Buffer
	for _, line := range lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}

	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write tmp journal: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename journal: %w", err)
	}
	return nil
}

func (j *Journal) readLines() ([][]byte, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer f.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("scan journal: %w", err)
	}
	return lines, nil
}
