package ledger

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tgifai/thursday/internal/pkg/logs"
)

// ErrAlreadyFired is returned by MarkFired for a key that is already recorded.
var ErrAlreadyFired = errors.New("slot already fired")

// Ledger is the durable record of fired slots: one SlotKey per line,
// append-only, rewritten only by the daily purge. The in-memory set is
// rebuilt from disk on Open and merged with disk on Reload.
type Ledger struct {
	path  string
	fired map[string]SlotKey
	mu    sync.RWMutex
}

// Open loads the ledger at path. A missing file, an unreadable file or
// corrupt lines are treated as empty.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	l := &Ledger{
		path:  path,
		fired: make(map[string]SlotKey),
	}
	if err := l.Reload(); err != nil {
		logs.Warn("[ledger] treating %s as empty: %v", path, err)
	}
	return l, nil
}

func (l *Ledger) Path() string {
	return l.path
}

// Reload merges entries written by other processes into memory. Entries
// already known in memory are never dropped here.
func (l *Ledger) Reload() error {
	keys, err := l.readDisk()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.fired[k.String()] = k
	}
	return nil
}

func (l *Ledger) HasFired(key SlotKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.fired[key.String()]
	return ok
}

// MarkFired appends key and fsyncs before returning. The in-memory set is
// only updated once the line is durable.
func (l *Ledger) MarkFired(key SlotKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := key.String()
	if _, ok := l.fired[line]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyFired, line)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}

	l.fired[line] = key
	return nil
}

// PurgeStale drops every entry not dated on today's calendar date and
// rewrites the file (tmp + rename). It returns the number of dropped entries.
func (l *Ledger) PurgeStale(today time.Time) (int, error) {
	onDisk, err := l.readDisk()
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, k := range onDisk {
		l.fired[k.String()] = k
	}

	kept := make(map[string]SlotKey, len(l.fired))
	for line, k := range l.fired {
		if k.OnDate(today) {
			kept[line] = k
		}
	}
	dropped := len(l.fired) - len(kept)
	if dropped == 0 && len(onDisk) == len(kept) {
		return 0, nil
	}

	var buf bytes.Buffer
	for _, k := range sortKeys(kept) {
		buf.WriteString(k.String())
		buf.WriteByte('\n')
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write tmp ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("rename ledger: %w", err)
	}

	l.fired = kept
	return dropped, nil
}

// Entries returns the known keys ordered by date, time and rule.
func (l *Ledger) Entries() []SlotKey {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortKeys(l.fired)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fired)
}

func (l *Ledger) readDisk() ([]SlotKey, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer f.Close()

	var keys []SlotKey
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		k, err := ParseSlotKey(string(text))
		if err != nil {
			// a torn final write after a crash lands here
			logs.Warn("[ledger] skip corrupt line %d in %s: %v", lineNo, l.path, err)
			continue
		}
		keys = append(keys, k)
	}
	if err := scanner.Err(); err != nil {
		return keys, fmt.Errorf("scan ledger: %w", err)
	}
	return keys, nil
}

func sortKeys(m map[string]SlotKey) []SlotKey {
	out := make([]SlotKey, 0, len(m))
	for _, k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
