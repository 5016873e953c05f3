package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/tgifai/thursday/internal/pkg/logs"
)

// futureSkew is how far ahead of the clock a marker mtime may be before it is
// considered left over from a clock step.
const futureSkew = 5 * time.Second

// FileLock is a marker file whose modification time is the acquisition
// time. Creation uses O_EXCL so two processes cannot both create it; the
// remove-stale-then-create step can still race between processes, which is
// accepted for a single scheduler per data directory.
type FileLock struct {
	path       string
	owner      string
	staleAfter time.Duration
	now        func() time.Time

	mu sync.Mutex
}

var _ Locker = (*FileLock)(nil)

func NewFileLock(path, owner string, staleAfter time.Duration) *FileLock {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if owner == "" {
		owner = NewOwner()
	}
	return &FileLock{
		path:       path,
		owner:      owner,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (l *FileLock) Path() string {
	return l.path
}

func (l *FileLock) Owner() string {
	return l.owner
}

func (l *FileLock) TryAcquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if info, err := os.Stat(l.path); err == nil {
		age := l.now().Sub(info.ModTime())
		// a marker well in the future means the clock stepped back; it is
		// treated as stale instead of blocking until the clock catches up
		if age > -futureSkew && age < l.staleAfter {
			return false, nil
		}
		logs.CtxWarn(ctx, "[lock] reclaiming stale lock %s (age %s)", l.path, age.Truncate(time.Second))
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("remove stale lock: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat lock: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// another process won between stat and create
			return false, nil
		}
		return false, fmt.Errorf("create lock: %w", err)
	}

	raw, _ := sonic.Marshal(newRecord(l.owner, l.now()))
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		_ = os.Remove(l.path)
		return false, fmt.Errorf("write lock: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(l.path)
		return false, fmt.Errorf("close lock: %w", err)
	}
	return true, nil
}

// Release removes the marker if this owner wrote it. A marker left by an
// unknown writer (empty or foreign format) is removed as well.
func (l *FileLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok, err := l.read()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if rec.Owner != "" && rec.Owner != l.owner {
		return fmt.Errorf("%w: held by %s", ErrNotHeld, rec.Owner)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock: %w", err)
	}
	return nil
}

func (l *FileLock) Holder(ctx context.Context) (Record, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *FileLock) read() (Record, bool, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("stat lock: %w", err)
	}

	var rec Record
	if raw, err := os.ReadFile(l.path); err == nil && len(raw) > 0 {
		_ = sonic.Unmarshal(raw, &rec)
	}
	// mtime is authoritative, the payload is informational
	rec.AcquiredAt = info.ModTime()
	return rec, true, nil
}
