// Package memory provides an in-memory conversation.Store for testing and
// lightweight deployments. Entries are lost when the process restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relaykit/relay/pkg/conversation"
)

// Store is an in-memory append-only conversation log.
type Store struct {
	mu      sync.RWMutex
	entries []*conversation.Entry
}

// Ensure Store implements conversation.Store at compile time.
var _ conversation.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{}
}

// Append records an entry.
func (s *Store) Append(ctx context.Context, e *conversation.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutation cannot corrupt the log.
	stored := *e
	s.entries = append(s.entries, &stored)
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*conversation.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*conversation.Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		e := *s.entries[i]
		out = append(out, &e)
	}
	return out, nil
}

// Count returns the total number of recorded entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close releases store resources.
func (s *Store) Close() error {
	return nil
}
