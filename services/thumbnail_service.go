package services

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"docmeta/config"
	"docmeta/logger"
	"docmeta/models"
	"docmeta/repositories"
	"docmeta/storage"

	"github.com/disintegration/imaging"
)

var thumbnailSourceExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

type ThumbnailService interface {
	// Generate renders the thumbnail for one version and records the outcome
	// on the file row. Non-image content is marked as not requiring one.
	Generate(ctx context.Context, tenantID int, fileID int64, version int) error
}

type thumbnailService struct {
	files repositories.FileRepository
	blobs storage.BlobStore
}

func NewThumbnailService(files repositories.FileRepository, blobs storage.BlobStore) ThumbnailService {
	return &thumbnailService{files: files, blobs: blobs}
}

func (s *thumbnailService) Generate(ctx context.Context, tenantID int, fileID int64, version int) error {
	file, err := s.files.GetVersion(ctx, nil, tenantID, fileID, version)
	if err != nil {
		return newAppError(http.StatusNotFound, "file version not found", err)
	}

	ext := strings.ToLower(storage.FileExtension(file.Title))
	if !thumbnailSourceExts[ext] {
		return s.setStatus(ctx, tenantID, fileID, version, models.ThumbnailNotRequired)
	}

	content, err := s.blobs.Read(ctx, storage.ContentPath(fileID, version, file.Title), 0, 0)
	if err != nil {
		return s.fail(ctx, tenantID, fileID, version, "read content failed", err)
	}
	defer content.Close()

	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return s.fail(ctx, tenantID, fileID, version, "decode failed", err)
	}

	cfg := config.AppConfig.Thumbnail
	thumb := imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(cfg.Quality)); err != nil {
		return s.fail(ctx, tenantID, fileID, version, "encode failed", err)
	}
	if err := s.blobs.Save(ctx, storage.ThumbnailPath(fileID, version), &buf, int64(buf.Len())); err != nil {
		return s.fail(ctx, tenantID, fileID, version, "store failed", err)
	}

	return s.setStatus(ctx, tenantID, fileID, version, models.ThumbnailCreated)
}

func (s *thumbnailService) fail(ctx context.Context, tenantID int, fileID int64, version int, msg string, cause error) error {
	logger.Warnf("thumbnail for file %d v%d: %s: %v", fileID, version, msg, cause)
	if err := s.setStatus(ctx, tenantID, fileID, version, models.ThumbnailError); err != nil {
		return err
	}
	return newAppError(http.StatusInternalServerError, "thumbnail generation failed", cause)
}

func (s *thumbnailService) setStatus(ctx context.Context, tenantID int, fileID int64, version int, status models.ThumbnailStatus) error {
	err := s.files.UpdateVersion(ctx, nil, tenantID, fileID, version, map[string]interface{}{
		"thumb": status,
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "update thumbnail status failed", err)
	}
	return nil
}
