package ledger

import (
	"sort"
	"sync"

	"github.com/iov-one/timevault"
)

// keyLocks serializes invocations that touch the same account. Writers
// take an exclusive lock, readers a shared one. Locks are always acquired
// in ascending key order so that two invocations cannot deadlock.
type keyLocks struct {
	mu    sync.Mutex
	locks map[timevault.Address]*sync.RWMutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[timevault.Address]*sync.RWMutex)}
}

func (k *keyLocks) get(addr timevault.Address) *sync.RWMutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[addr]
	if !ok {
		l = &sync.RWMutex{}
		k.locks[addr] = l
	}
	return l
}

// acquire locks all given keys. The map value tells if the key is locked
// for writing. The returned function releases all locks.
func (k *keyLocks) acquire(keys map[timevault.Address]bool) func() {
	sorted := make([]timevault.Address, 0, len(keys))
	for addr := range keys {
		sorted = append(sorted, addr)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	release := make([]func(), 0, len(sorted))
	for _, addr := range sorted {
		l := k.get(addr)
		if keys[addr] {
			l.Lock()
			release = append(release, l.Unlock)
		} else {
			l.RLock()
			release = append(release, l.RUnlock)
		}
	}
	return func() {
		for i := len(release) - 1; i >= 0; i-- {
			release[i]()
		}
	}
}
