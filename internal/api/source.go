package api

import (
	"context"
	"net/url"
	"slices"
	"sync"

	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

// Lister fetches rows; satisfied by *Client.
type Lister interface {
	List(ctx context.Context, path string, query url.Values) ([]record.Record, error)
}

// Source holds the authoritative rows of one endpoint. Revalidate refetches
// and replaces them; subscribers are notified after every successful load.
type Source struct {
	lister Lister
	path   string
	query  url.Values

	mu        sync.RWMutex
	rows      []record.Record
	loaded    bool
	listeners []func([]record.Record)
}

// NewSource returns an empty source for path.
func NewSource(lister Lister, path string, query url.Values) *Source {
	return &Source{lister: lister, path: path, query: query}
}

// Path returns the endpoint the source reads.
func (s *Source) Path() string { return s.path }

// Rows returns the last loaded rows.
func (s *Source) Rows() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

// Loaded reports whether at least one fetch succeeded.
func (s *Source) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Find returns the row with id.
func (s *Source) Find(id string) (record.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rows {
		if r.RowID() == id {
			return r, true
		}
	}
	return nil, false
}

// OnChange registers fn to receive rows after each successful load.
func (s *Source) OnChange(fn func([]record.Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load fetches the rows for the first time. It is Revalidate under another name.
func (s *Source) Load(ctx context.Context) error {
	return s.Revalidate(ctx)
}

// Revalidate refetches and replaces the held rows. On failure the previous
// rows are kept.
func (s *Source) Revalidate(ctx context.Context) error {
	rows, err := s.lister.List(ctx, s.path, s.query)
	if err != nil {
		logger.FromContext(ctx).Error(err, "revalidation failed", "path", s.path)
		return err
	}
	s.mu.Lock()
	s.rows = rows
	s.loaded = true
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(slices.Clone(rows))
	}
	return nil
}
