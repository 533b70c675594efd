package realtime

import (
	"sync"

	"campurent/internal/metrics"
)

// PushChannel is one live client connection. Implementations must tolerate
// concurrent Send calls.
type PushChannel interface {
	Send(message any) error
	Close() error
}

// ConnectionRegistry maps a user to at most one live push channel. Delivery
// is fire-and-forget: no queue, no retry; an absent or failed channel is a
// silent drop.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]PushChannel
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: map[string]PushChannel{}}
}

// Connect stores the channel for a user, replacing and closing any previous
// one.
func (r *ConnectionRegistry) Connect(userID string, ch PushChannel) {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = ch
	r.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	metrics.ConnectedClients.Set(float64(r.Count()))
}

// Disconnect removes the user's channel if the given one is still current.
// A stale disconnect from a replaced connection must not evict the new one.
func (r *ConnectionRegistry) Disconnect(userID string, ch PushChannel) {
	r.mu.Lock()
	if current, ok := r.conns[userID]; ok && (ch == nil || current == ch) {
		delete(r.conns, userID)
	}
	r.mu.Unlock()
	metrics.ConnectedClients.Set(float64(r.Count()))
}

// SendToUser delivers if connected; returns false on a silent drop.
func (r *ConnectionRegistry) SendToUser(userID string, message any) bool {
	r.mu.RLock()
	ch := r.conns[userID]
	r.mu.RUnlock()

	if ch == nil {
		metrics.PushMessagesTotal.WithLabelValues("dropped").Inc()
		return false
	}
	if err := ch.Send(message); err != nil {
		metrics.PushMessagesTotal.WithLabelValues("dropped").Inc()
		return false
	}
	metrics.PushMessagesTotal.WithLabelValues("sent").Inc()
	return true
}

// Broadcast sends to every currently connected user, best-effort.
func (r *ConnectionRegistry) Broadcast(message any) {
	r.mu.RLock()
	targets := make([]PushChannel, 0, len(r.conns))
	for _, ch := range r.conns {
		targets = append(targets, ch)
	}
	r.mu.RUnlock()

	for _, ch := range targets {
		if err := ch.Send(message); err != nil {
			metrics.PushMessagesTotal.WithLabelValues("dropped").Inc()
			continue
		}
		metrics.PushMessagesTotal.WithLabelValues("sent").Inc()
	}
}

func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
