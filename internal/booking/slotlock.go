package booking

import (
	"fmt"
	"sync"
	"time"
)

// slotLock serializes booking creation per (court, date) so the
// check-then-insert sequence cannot race for the same schedule page. Locks
// are refcounted and removed from the map once the last holder releases.
type slotLock struct {
	mu    sync.Mutex
	locks map[string]*slotLockEntry
}

type slotLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSlotLock() *slotLock {
	return &slotLock{locks: make(map[string]*slotLockEntry)}
}

func slotKey(courtID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", courtID, date.Format("2006-01-02"))
}

func (l *slotLock) lock(courtID int64, date time.Time) func() {
	key := slotKey(courtID, date)

	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &slotLockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
