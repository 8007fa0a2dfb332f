// Package store persists parsed resume documents between requests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgallion1/resumedoc/internal/section"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("document not found")

// Record is one stored resume: its source and the current section list.
type Record struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Format    string            `json:"format"`
	Raw       string            `json:"raw,omitempty"`
	Document  *section.Document `json:"document"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Clone returns a copy that shares nothing mutable with r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Document = r.Document.Clone()
	return &c
}

// Summary is the listing view of a record.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Format    string    `json:"format"`
	Sections  int       `json:"sections"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Record) Summary() Summary {
	n := 0
	if r.Document != nil {
		n = len(r.Document.Sections)
	}
	return Summary{ID: r.ID, Title: r.Title, Format: r.Format, Sections: n, UpdatedAt: r.UpdatedAt}
}

// Store is the persistence boundary. Implementations hand out copies, so
// callers may modify what they receive.
type Store interface {
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// Update loads the record, applies fn and saves the result atomically.
	// When fn returns an error nothing is saved and the error is returned.
	Update(ctx context.Context, id string, fn func(*Record) error) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
	Close()
}
