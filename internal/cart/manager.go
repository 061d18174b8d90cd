package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 5 * time.Second

// Manager hands out one Store per owner, loading it on first use and
// forgetting it once idle.
type Manager struct {
	storage Storage
	sync    Synchronizer
	log     *zap.Logger
	now     func() time.Time

	loads singleflight.Group

	mu     sync.Mutex
	stores map[string]*managedStore
}

type managedStore struct {
	store      *Store
	lastAccess time.Time
}

func NewManager(storage Storage, synchronizer Synchronizer, logger *zap.Logger) *Manager {
	return &Manager{
		storage: storage,
		sync:    synchronizer,
		log:     logger,
		now:     time.Now,
		stores:  make(map[string]*managedStore),
	}
}

// Store returns the owner's cart. The first request for an owner loads it
// from storage without holding up other owners; concurrent first requests
// share one load.
func (m *Manager) Store(ctx context.Context, owner string) *Store {
	if s, ok := m.lookup(owner); ok {
		return s
	}

	v, _, _ := m.loads.Do(owner, func() (any, error) {
		if s, ok := m.lookup(owner); ok {
			return s, nil
		}
		loadCtx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		s := NewStore(loadCtx, owner, m.storage, m.sync, m.log)

		m.mu.Lock()
		defer m.mu.Unlock()
		m.stores[owner] = &managedStore{store: s, lastAccess: m.now()}
		return s, nil
	})
	return v.(*Store)
}

func (m *Manager) lookup(owner string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.stores[owner]
	if !ok {
		return nil, false
	}
	ms.lastAccess = m.now()
	return ms.store, true
}

// EvictIdle drops stores unused for longer than idle, checking every interval
// until ctx is done. Evicted carts are reloaded from storage on next use.
func (m *Manager) EvictIdle(ctx context.Context, idle, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.evictIdle(idle); n > 0 {
				m.log.Debug("evicted idle carts", zap.Int("count", n))
			}
		}
	}
}

// evictIdle skips a store whose mutation is still running.
func (m *Manager) evictIdle(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for owner, ms := range m.stores {
		if m.now().Sub(ms.lastAccess) <= idle {
			continue
		}
		if !ms.store.opMu.TryLock() {
			continue
		}
		delete(m.stores, owner)
		ms.store.opMu.Unlock()
		n++
	}
	return n
}

// Len reports how many carts are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
