package conversation

import (
	"sync"
	"time"

	"github.com/AlexBit99/MyMISiSAdventures/storage"
)

// HistoryView is a cached, paginated, read-only snapshot of a user's saved
// essays. Page turns reuse the snapshot taken when the view was opened; the
// underlying list changing mid-browse does not affect it.
type HistoryView struct {
	Essays   []storage.Essay
	Page     int
	OpenedAt time.Time
}

// Store holds per-user sessions and history views. Implementations must be
// safe for concurrent use; no persistence across restarts is guaranteed.
type Store interface {
	Get(userID int64) (Session, bool)
	Put(userID int64, s Session)
	Clear(userID int64)

	History(userID int64) (*HistoryView, bool)
	PutHistory(userID int64, v *HistoryView)
	ClearHistory(userID int64)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	history  map[int64]*HistoryView

	historyTTL time.Duration
	now        func() time.Time
}

// DefaultHistoryTTL bounds how long an untouched history view stays cached.
const DefaultHistoryTTL = 15 * time.Minute

// NewMemoryStore constructs an in-memory Store. History views left open are
// evicted lazily once historyTTL has passed since they were opened;
// historyTTL <= 0 selects DefaultHistoryTTL.
func NewMemoryStore(historyTTL time.Duration) Store {
	if historyTTL <= 0 {
		historyTTL = DefaultHistoryTTL
	}
	return &memoryStore{
		sessions:   make(map[int64]Session),
		history:    make(map[int64]*HistoryView),
		historyTTL: historyTTL,
		now:        time.Now,
	}
}

func (m *memoryStore) Get(userID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *memoryStore) Put(userID int64, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *memoryStore) History(userID int64) (*HistoryView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.history[userID]
	if !ok {
		return nil, false
	}
	if m.now().Sub(v.OpenedAt) > m.historyTTL {
		delete(m.history, userID)
		return nil, false
	}
	return v, true
}

func (m *memoryStore) PutHistory(userID int64, v *HistoryView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.OpenedAt.IsZero() {
		v.OpenedAt = m.now()
	}
	m.history[userID] = v
}

func (m *memoryStore) ClearHistory(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, userID)
}
