package todo

import (
	"context"
	"time"
)

const (
	StatusOpen = "open"
	StatusDone = "done"
)

// Item is a single to-do entry. The ID format is backend specific: the file
// and flat-table backends use an opaque random token, the template backend
// uses the sheet row number as a decimal string. Callers must not assume ids
// are portable across backends.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
	Status    string    `json:"status"`
	DoneAt    string    `json:"doneAt,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// NewItem holds the caller-supplied fields for Add.
type NewItem struct {
	Text   string
	UserID string
}

type ListOptions struct {
	// Limit truncates the result to the most recent Limit items, preserving
	// creation order. Zero or negative means no truncation.
	Limit int
	// IncludeDone also returns items already marked done.
	IncludeDone bool
}

type DoneResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	DoneAt string `json:"doneAt"`
}

type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Store is the persistence contract shared by all backends.
type Store interface {
	Name() string
	Add(ctx context.Context, source Source, item NewItem) (Item, error)
	List(ctx context.Context, source Source, opts ListOptions) ([]Item, error)
}

// Mutator is implemented by backends that can address individual items by id
// after creation. The auxiliary HTTP API probes for it before exposing the
// done/delete endpoints.
type Mutator interface {
	MarkDone(ctx context.Context, id string, done bool) (DoneResult, error)
	Delete(ctx context.Context, id string) (DeleteResult, error)
}
