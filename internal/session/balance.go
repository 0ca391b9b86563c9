package session

import "sync"

// Balance is the shared local currency balance. It is safe for concurrent
// use since results may be applied from a network goroutine.
type Balance struct {
	mu       sync.Mutex
	value    int64
	version  uint64
	credited map[string]bool
}

// NewBalance creates a balance starting at initial.
func NewBalance(initial int64) *Balance {
	return &Balance{value: initial, credited: make(map[string]bool)}
}

// Value returns the current balance.
func (b *Balance) Value() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Version counts the changes made to the balance. Take it before asking the
// server for a balance and hand it to Sync with the answer.
func (b *Balance) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Sync overwrites the balance with a server value fetched when the balance
// was at version seen. A value older than a later local change is dropped
// and Sync returns false.
func (b *Balance) Sync(v int64, seen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.version != seen {
		return false
	}
	b.value = v
	b.version++
	return true
}

// Credit adds amount on behalf of the play identified by key. A play is
// credited at most once; later calls return false and change nothing.
// The balance never drops below zero.
func (b *Balance) Credit(key string, amount int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.credited[key] {
		return false
	}
	if b.credited == nil {
		b.credited = make(map[string]bool)
	}
	b.credited[key] = true
	b.value = max(0, b.value+int64(amount))
	b.version++
	return true
}
