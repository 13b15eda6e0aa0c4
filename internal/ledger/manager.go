package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Manager keys sessions by participant so repeated dashboard calls for
// the same ledger reuse one cache. Sessions are loaded lazily and can
// be evicted to force a fresh upstream read.
type Manager struct {
	client  upstreamClient
	notify  notifier
	journal intentJournal
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// sessionEntry gates the initial load so concurrent first requests for
// the same participant share a single upstream fetch.
type sessionEntry struct {
	sess *Session
	once sync.Once
	err  error
}

func NewManager(client upstreamClient, notify notifier, journal intentJournal, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		client:   client,
		notify:   notify,
		journal:  journal,
		now:      now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Session returns the cached session for the participant, loading it on
// first use.
func (m *Manager) Session(ctx context.Context, participantID string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.sessions[participantID]
	if !ok {
		entry = &sessionEntry{
			sess: NewSession(participantID, m.client, m.notify, m.journal, m.now),
		}
		m.sessions[participantID] = entry
	}
	m.mu.Unlock()

	entry.once.Do(func() { entry.err = entry.sess.Load(ctx) })
	if entry.err != nil {
		m.Evict(participantID)
		return nil, fmt.Errorf("Session: %w", entry.err)
	}
	return entry.sess, nil
}

// Evict drops a cached session so the next access reloads upstream
// state.
func (m *Manager) Evict(participantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, participantID)
}
