package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Manager runs events against stored sessions, one event per session at a
// time.
type Manager struct {
	eng   *Engine
	store Store
	locks keyedMutex
	log   *zap.Logger
}

func NewManager(eng *Engine, store Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{eng: eng, store: store, log: log}
}

// Do loads the session, runs fn and saves the result. The state is saved
// even when fn fails, since handlers leave it consistent either way. A
// blank result is never stored: a new session stays unsaved and a stored
// one is deleted. The returned snapshot is the state after fn.
func (m *Manager) Do(ctx context.Context, id string, fn func(*Session) error) (*State, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	stored := true
	st, err := m.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		st, err, stored = NewState(), nil, false
	}
	if err != nil {
		return nil, err
	}
	s := m.eng.Open(st)
	ferr := fn(s)

	// Persisting must not depend on the caller still waiting.
	if err := m.persist(context.WithoutCancel(ctx), id, s.st, stored); err != nil {
		m.log.Error("save session", zap.String("session", id), zap.Error(err))
		if ferr == nil {
			ferr = fmt.Errorf("save session: %w", err)
		}
	}
	return s.Snapshot(), ferr
}

func (m *Manager) persist(ctx context.Context, id string, st *State, stored bool) error {
	if !st.Blank() {
		return m.store.Save(ctx, id, st)
	}
	if stored {
		return m.store.Delete(ctx, id)
	}
	return nil
}

// View returns the current state without running an event.
func (m *Manager) View(ctx context.Context, id string) (*State, error) {
	return m.Do(ctx, id, func(*Session) error { return nil })
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*refMutex{}
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
