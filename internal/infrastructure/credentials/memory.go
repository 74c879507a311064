package credentials

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	deadline time.Time
}

// MemoryKV is an in-process ports.KeyValueStore with per-entry expiry.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryKV returns an empty MemoryKV using the wall clock.
func NewMemoryKV() *MemoryKV {
	return NewMemoryKVWithClock(time.Now)
}

// NewMemoryKVWithClock returns an empty MemoryKV reading time from now.
func NewMemoryKVWithClock(now func() time.Time) *MemoryKV {
	return &MemoryKV{entries: make(map[string]memoryEntry), now: now}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.deadline.IsZero() && !m.now().Before(e.deadline) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemoryKV) SetMany(_ context.Context, entries map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deadline time.Time
	if ttl > 0 {
		deadline = m.now().Add(ttl)
	}
	for k, v := range entries {
		m.entries[k] = memoryEntry{value: v, deadline: deadline}
	}
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// live reports whether any entry is unexpired, dropping the expired ones.
func (m *MemoryKV) live() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if !e.deadline.IsZero() && !now.Before(e.deadline) {
			delete(m.entries, k)
		}
	}
	return len(m.entries) > 0
}

type memorySlot struct {
	kv       *MemoryKV
	attached bool
}

// MemoryKVFactory hands out one MemoryKV per client id. A KV stays while a
// client holds it or while it still has unexpired credentials; Release and
// Sweep drop the rest.
type MemoryKVFactory struct {
	mu    sync.Mutex
	slots map[string]*memorySlot
	now   func() time.Time
}

func NewMemoryKVFactory() *MemoryKVFactory {
	return newMemoryKVFactory(time.Now)
}

func newMemoryKVFactory(now func() time.Time) *MemoryKVFactory {
	return &MemoryKVFactory{slots: make(map[string]*memorySlot), now: now}
}

// For returns the MemoryKV of clientID, creating it on first use, and marks
// it held by a live client.
func (f *MemoryKVFactory) For(clientID string) *MemoryKV {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[clientID]
	if !ok {
		slot = &memorySlot{kv: NewMemoryKVWithClock(f.now)}
		f.slots[clientID] = slot
	}
	slot.attached = true
	return slot.kv
}

// Release marks clientID's KV as no longer held and drops it when it has
// nothing left to hydrate a returning client from. It reports whether the KV
// was dropped.
func (f *MemoryKVFactory) Release(clientID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[clientID]
	if !ok {
		return false
	}
	slot.attached = false
	if slot.kv.live() {
		return false
	}
	delete(f.slots, clientID)
	return true
}

// Sweep drops released KVs whose credentials all expired and returns how many
// went.
func (f *MemoryKVFactory) Sweep() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, slot := range f.slots {
		if !slot.attached && !slot.kv.live() {
			delete(f.slots, id)
			n++
		}
	}
	return n
}

// Len returns the number of KVs held.
func (f *MemoryKVFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.slots)
}

// Run sweeps every interval until ctx is cancelled.
func (f *MemoryKVFactory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Sweep()
		}
	}
}
