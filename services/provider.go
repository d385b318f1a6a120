package services

import (
	"context"
	"io"
)

// ProviderEntry is the minimal shape of a file or folder living on an
// external storage backend.
type ProviderEntry struct {
	ID       string
	Title    string
	Size     int64
	IsFolder bool
}

// ProviderFileDao is the file half of an external backend adapter. Adapters
// live outside this engine; the orchestrator only drives them through this
// contract.
type ProviderFileDao interface {
	GetFile(ctx context.Context, id string) (ProviderEntry, error)
	ReadContent(ctx context.Context, id string) (io.ReadCloser, error)
	// SaveContent stores a new file under folderID and returns its
	// provider-side id.
	SaveContent(ctx context.Context, folderID string, title string, size int64, content io.Reader) (string, error)
	Exists(ctx context.Context, id string) (bool, error)
	Size(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// ProviderFolderDao is the folder half of an external backend adapter.
type ProviderFolderDao interface {
	GetFolder(ctx context.Context, id string) (ProviderEntry, error)
	CreateFolder(ctx context.Context, parentID string, title string) (string, error)
	ListChildren(ctx context.Context, id string) ([]ProviderEntry, error)
	Delete(ctx context.Context, id string) error
}

// Provider pairs the two daos with the id-prefix convention of one external
// backend.
type Provider interface {
	// Match reports whether the raw external id belongs to this backend.
	Match(id string) bool
	Files() ProviderFileDao
	Folders() ProviderFolderDao
}

// ProviderSelector resolves a raw external id to its backend adapter.
type ProviderSelector struct {
	providers []Provider
}

func NewProviderSelector(providers ...Provider) *ProviderSelector {
	return &ProviderSelector{providers: providers}
}

func (s *ProviderSelector) Register(p Provider) {
	s.providers = append(s.providers, p)
}

func (s *ProviderSelector) Select(id string) (Provider, bool) {
	for _, p := range s.providers {
		if p.Match(id) {
			return p, true
		}
	}
	return nil, false
}
