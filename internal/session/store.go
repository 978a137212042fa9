package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Load for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store keeps session states between events.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st *State) error
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	st      *State
	touched time.Time
}

// MemoryStore keeps states in process. Entries idle for longer than the
// TTL are dropped.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: map[string]memEntry{}, ttl: ttl, now: time.Now}
}

func (m *MemoryStore) expired(e memEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touched) > m.ttl
}

func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if m.expired(e, now) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}
	e.touched = now
	m.entries[id] = e
	return e.st.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, id string, st *State) error {
	m.mu.Lock()
	m.entries[id] = memEntry{st: st.Clone(), touched: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep drops expired entries and reports how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (m *MemoryStore) Janitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
