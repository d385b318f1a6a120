package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// Disk stores blobs on an afero filesystem rooted at basePath. Production
// wiring passes afero.NewOsFs(); tests pass afero.NewMemMapFs().
type Disk struct {
	fs       afero.Fs
	basePath string
}

func NewDisk(fs afero.Fs, basePath string) *Disk {
	return &Disk{fs: fs, basePath: basePath}
}

func (d *Disk) abs(p string) string {
	return path.Join(d.basePath, p)
}

func (d *Disk) Save(_ context.Context, p string, r io.Reader, size int64) error {
	full := d.abs(p)
	if err := d.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return err
	}

	f, err := d.fs.Create(full)
	if err != nil {
		return err
	}

	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = d.fs.Remove(full)
		return err
	}
	if size > 0 && written != size {
		_ = d.fs.Remove(full)
		return fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	return nil
}

func (d *Disk) Read(_ context.Context, p string, offset int64, length int64) (io.ReadCloser, error) {
	f, err := d.fs.Open(d.abs(p))
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if length > 0 {
		return struct {
			io.Reader
			io.Closer
		}{io.LimitReader(f, length), f}, nil
	}
	return f, nil
}

func (d *Disk) Delete(_ context.Context, p string) error {
	err := d.fs.Remove(d.abs(p))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *Disk) DeleteDir(_ context.Context, prefix string) error {
	return d.fs.RemoveAll(d.abs(prefix))
}

func (d *Disk) Copy(ctx context.Context, srcPath string, dstPath string) error {
	src, err := d.fs.Open(d.abs(srcPath))
	if err != nil {
		return err
	}
	defer src.Close()
	return d.Save(ctx, dstPath, src, 0)
}

func (d *Disk) IsFile(_ context.Context, p string) (bool, error) {
	info, err := d.fs.Stat(d.abs(p))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (d *Disk) Size(_ context.Context, p string) (int64, error) {
	info, err := d.fs.Stat(d.abs(p))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
