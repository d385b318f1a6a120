package search

import "context"

// Record is what the indexer receives about an entry. The engine never
// blocks or rolls back on index failures; indexing is best effort.
type Record struct {
	TenantID  int
	EntryID   string
	EntryType int
	Title     string
	ParentID  int64
}

type Indexer interface {
	IndexAsync(ctx context.Context, record Record)
	DeleteAsync(ctx context.Context, record Record)
	// TrySelectIDs asks the index for entry ids matching query. ok=false
	// means the index cannot answer and the caller must fall back to the
	// store.
	TrySelectIDs(ctx context.Context, tenantID int, query string) (ok bool, ids []string)
}

// Noop satisfies Indexer for deployments without a search backend.
type Noop struct{}

func (Noop) IndexAsync(context.Context, Record)  {}
func (Noop) DeleteAsync(context.Context, Record) {}

func (Noop) TrySelectIDs(context.Context, int, string) (bool, []string) {
	return false, nil
}
