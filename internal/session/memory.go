package session

import (
	"context"
	"sync"
	"time"
)

type pendingEntry struct {
	OrderID   string
	ExpiresAt time.Time
}

// Memory is an in-process PendingOrders with lazy expiry.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]pendingEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]pendingEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, token string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[token]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if m.ttl > 0 && m.now().After(entry.ExpiresAt) {
		m.mu.Lock()
		delete(m.entries, token)
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.OrderID, true, nil
}

func (m *Memory) Set(_ context.Context, token, orderID string) error {
	m.mu.Lock()
	m.entries[token] = pendingEntry{OrderID: orderID, ExpiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.entries, token)
	m.mu.Unlock()
	return nil
}
