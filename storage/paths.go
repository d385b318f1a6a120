package storage

import (
	"fmt"
	"path"
	"strings"
)

// The on-disk layout buckets file identities in groups of 1000 so no single
// physical directory grows unbounded:
//
//	folder_{ceil(id/1000)*1000}/file_{id}/v{version}/content{ext}
//
// These functions govern durable addressing and must stay bit-stable.

func FileDirectory(fileID int64) string {
	bucket := (fileID + 999) / 1000 * 1000
	return fmt.Sprintf("folder_%d/file_%d", bucket, fileID)
}

func VersionDirectory(fileID int64, version int) string {
	return path.Join(FileDirectory(fileID), fmt.Sprintf("v%d", version))
}

// ContentPath names the content object of a version. The extension is taken
// from the title and case-normalized.
func ContentPath(fileID int64, version int, title string) string {
	return path.Join(VersionDirectory(fileID, version), "content"+FileExtension(title))
}

func ThumbnailPath(fileID int64, version int) string {
	return path.Join(VersionDirectory(fileID, version), "thumb.jpg")
}

func FileExtension(title string) string {
	idx := strings.LastIndex(title, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(title[idx:])
}
