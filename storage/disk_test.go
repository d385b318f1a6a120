package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestDisk() *Disk {
	return NewDisk(afero.NewMemMapFs(), "/data")
}

func mustSave(t *testing.T, d *Disk, path string, content string) {
	t.Helper()
	if err := d.Save(context.Background(), path, strings.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestDiskSaveAndRead(t *testing.T) {
	d := newTestDisk()
	mustSave(t, d, "a/b/c.txt", "hello world")

	rc, err := d.Read(context.Background(), "a/b/c.txt", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readAll(t, rc); got != "hello world" {
		t.Fatalf("content = %q", got)
	}
}

func TestDiskSaveRejectsShortWrite(t *testing.T) {
	d := newTestDisk()
	err := d.Save(context.Background(), "a.txt", strings.NewReader("abc"), 10)
	if err == nil {
		t.Fatalf("short write must fail")
	}
	exists, _ := d.IsFile(context.Background(), "a.txt")
	if exists {
		t.Fatalf("partial object must not survive a short write")
	}
}

func TestDiskReadOffsetAndLength(t *testing.T) {
	d := newTestDisk()
	mustSave(t, d, "a.txt", "0123456789")

	rc, err := d.Read(context.Background(), "a.txt", 3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readAll(t, rc); got != "3456789" {
		t.Fatalf("offset read = %q", got)
	}

	rc, err = d.Read(context.Background(), "a.txt", 3, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readAll(t, rc); got != "3456" {
		t.Fatalf("ranged read = %q", got)
	}
}

func TestDiskCopy(t *testing.T) {
	d := newTestDisk()
	mustSave(t, d, "src/a.txt", "payload")

	if err := d.Copy(context.Background(), "src/a.txt", "dst/b.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rc, err := d.Read(context.Background(), "dst/b.txt", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readAll(t, rc); got != "payload" {
		t.Fatalf("copied content = %q", got)
	}
	// Source is untouched.
	if exists, _ := d.IsFile(context.Background(), "src/a.txt"); !exists {
		t.Fatalf("source vanished during copy")
	}
}

func TestDiskDeleteIsIdempotent(t *testing.T) {
	d := newTestDisk()
	mustSave(t, d, "a.txt", "x")

	if err := d.Delete(context.Background(), "a.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Delete(context.Background(), "a.txt"); err != nil {
		t.Fatalf("deleting a missing object must be a no-op: %v", err)
	}
}

func TestDiskDeleteDirRemovesSubtree(t *testing.T) {
	d := newTestDisk()
	mustSave(t, d, "file_1/v1/content.txt", "v1")
	mustSave(t, d, "file_1/v2/content.txt", "v2")
	mustSave(t, d, "file_2/v1/content.txt", "other")

	if err := d.DeleteDir(context.Background(), "file_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range []string{"file_1/v1/content.txt", "file_1/v2/content.txt"} {
		if exists, _ := d.IsFile(context.Background(), p); exists {
			t.Fatalf("%s survived DeleteDir", p)
		}
	}
	if exists, _ := d.IsFile(context.Background(), "file_2/v1/content.txt"); !exists {
		t.Fatalf("unrelated object removed")
	}
}

func TestDiskIsFileAndSize(t *testing.T) {
	d := newTestDisk()
	mustSave(t, d, "a/b.txt", "12345")

	exists, err := d.IsFile(context.Background(), "a/b.txt")
	if err != nil || !exists {
		t.Fatalf("IsFile = %v, %v", exists, err)
	}
	exists, err = d.IsFile(context.Background(), "missing.txt")
	if err != nil || exists {
		t.Fatalf("missing file reported present: %v, %v", exists, err)
	}

	size, err := d.Size(context.Background(), "a/b.txt")
	if err != nil || size != 5 {
		t.Fatalf("Size = %d, %v", size, err)
	}
}
