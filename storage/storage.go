package storage

import (
	"context"
	"io"
)

// BlobStore is the byte backend addressed by the path scheme in paths.go.
// Implementations: Disk (afero) and S3.
type BlobStore interface {
	Save(ctx context.Context, path string, r io.Reader, size int64) error
	// Read returns a reader over [offset, offset+length); length <= 0 reads
	// to the end of the object.
	Read(ctx context.Context, path string, offset int64, length int64) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	// DeleteDir removes every object under the prefix.
	DeleteDir(ctx context.Context, prefix string) error
	Copy(ctx context.Context, srcPath string, dstPath string) error
	IsFile(ctx context.Context, path string) (bool, error)
	Size(ctx context.Context, path string) (int64, error)
}
