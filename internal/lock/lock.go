package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// DefaultStaleAfter exceeds the longest expected dispatch across all
// recipients; an older lock is treated as abandoned.
const DefaultStaleAfter = 180 * time.Second

// ErrNotHeld is returned by Release when the lock belongs to another owner.
var ErrNotHeld = errors.New("lock not held by this owner")

// Locker guards a dispatch critical section shared by scheduler instances.
type Locker interface {
	// TryAcquire returns false without error when another live holder exists.
	TryAcquire(ctx context.Context) (bool, error)
	// Release drops the lock. A lock that is already gone is not an error.
	Release(ctx context.Context) error
	// Holder describes the current holder, if any.
	Holder(ctx context.Context) (Record, bool, error)
}

// Record is the payload stored with a lock.
type Record struct {
	AcquiredAt time.Time `json:"acquired_at"`
	Owner      string    `json:"owner"`
	PID        int       `json:"pid"`
	Host       string    `json:"host"`
}

func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.AcquiredAt)
}

// NewOwner returns an identity unique to this process instance.
func NewOwner() string {
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}

func newRecord(owner string, now time.Time) Record {
	host, _ := os.Hostname()
	return Record{
		AcquiredAt: now,
		Owner:      owner,
		PID:        os.Getpid(),
		Host:       host,
	}
}
