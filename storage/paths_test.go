package storage

import "testing"

// The path scheme is durable addressing: existing deployments depend on every
// one of these exact strings.
func TestFileDirectoryBucketsInThousands(t *testing.T) {
	cases := []struct {
		fileID int64
		want   string
	}{
		{1, "folder_1000/file_1"},
		{999, "folder_1000/file_999"},
		{1000, "folder_1000/file_1000"},
		{1001, "folder_2000/file_1001"},
		{2500, "folder_3000/file_2500"},
	}
	for _, tc := range cases {
		if got := FileDirectory(tc.fileID); got != tc.want {
			t.Fatalf("FileDirectory(%d) = %q, want %q", tc.fileID, got, tc.want)
		}
	}
}

func TestContentPath(t *testing.T) {
	cases := []struct {
		fileID  int64
		version int
		title   string
		want    string
	}{
		{1, 1, "doc.txt", "folder_1000/file_1/v1/content.txt"},
		{1, 3, "doc.TXT", "folder_1000/file_1/v3/content.txt"},
		{1500, 2, "archive.tar.gz", "folder_2000/file_1500/v2/content.gz"},
		{7, 1, "noext", "folder_1000/file_7/v1/content"},
	}
	for _, tc := range cases {
		if got := ContentPath(tc.fileID, tc.version, tc.title); got != tc.want {
			t.Fatalf("ContentPath(%d, %d, %q) = %q, want %q", tc.fileID, tc.version, tc.title, got, tc.want)
		}
	}
}

func TestThumbnailPath(t *testing.T) {
	if got := ThumbnailPath(42, 2); got != "folder_1000/file_42/v2/thumb.jpg" {
		t.Fatalf("ThumbnailPath(42, 2) = %q", got)
	}
}

func TestVersionDirectoryContainsContentPath(t *testing.T) {
	dir := VersionDirectory(42, 2)
	content := ContentPath(42, 2, "a.txt")
	if len(content) <= len(dir) || content[:len(dir)] != dir {
		t.Fatalf("%q must be a prefix of %q", dir, content)
	}
}

func TestFileExtension(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"doc.txt", ".txt"},
		{"doc.TXT", ".txt"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"trailing.", "."},
	}
	for _, tc := range cases {
		if got := FileExtension(tc.title); got != tc.want {
			t.Fatalf("FileExtension(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}
