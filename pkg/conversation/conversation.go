// Package conversation defines the append-only conversation log shared by
// the messenger and responder sides. Entries record each outgoing message
// and each AI-generated reply; the log grows unbounded for the process
// lifetime.
package conversation

import (
	"context"
	"time"
)

// Entry is one record in the conversation log.
type Entry struct {
	// ID is a unique entry identifier, assigned on append when empty.
	ID string `json:"id"`

	// Timestamp is when the entry was recorded, UTC.
	Timestamp time.Time `json:"timestamp"`

	// From and To name the sending and receiving side, for example
	// "messenger" and "responder".
	From string `json:"from"`
	To   string `json:"to"`

	// Message is the entry text: the user message for outgoing entries,
	// the generated reply for AI entries.
	Message string `json:"message"`

	// AIGenerated marks entries carrying a model response.
	AIGenerated bool `json:"aiGenerated"`

	// Model, Tokens, and Cost are set on AI-generated entries.
	Model  string  `json:"model,omitempty"`
	Tokens int     `json:"tokens,omitempty"`
	Cost   float64 `json:"cost,omitempty"`
}

// Store is an append-only conversation log.
type Store interface {
	// Append records an entry. The entry's ID and Timestamp are filled
	// in when empty.
	Append(ctx context.Context, e *Entry) error

	// Recent returns up to limit entries, newest first. limit <= 0
	// returns all entries.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// Count returns the total number of recorded entries.
	Count(ctx context.Context) (int, error)

	// Close releases store resources.
	Close() error
}
