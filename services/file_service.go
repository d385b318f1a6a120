package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docmeta/locks"
	"docmeta/logger"
	"docmeta/models"
	"docmeta/repositories"
	"docmeta/search"
	"docmeta/storage"

	"gorm.io/gorm"
)

type SaveFileInput struct {
	// FileID 0 starts a new logical file; otherwise a new version (or an
	// in-place update when KeepVersion is set) of the existing chain.
	FileID        int64
	FolderID      int64
	Title         string
	ContentLength int64
	Content       io.Reader
	KeepVersion   bool
	Encrypted     bool
	Comment       string
	Category      int
	Forcesave     models.ForcesaveType
}

type FileService interface {
	GetFile(ctx context.Context, tenantID int, fileID int64) (models.File, error)
	GetFileVersion(ctx context.Context, tenantID int, fileID int64, version int) (models.File, error)
	ListVersions(ctx context.Context, tenantID int, fileID int64) ([]models.File, error)
	ReadContent(ctx context.Context, tenantID int, fileID int64, version int) (io.ReadCloser, error)
	SaveFile(ctx context.Context, tenantID int, actor string, in SaveFileInput) (models.File, error)
	// ReplaceVersion rewrites the content of an existing version without
	// bumping the version counter.
	ReplaceVersion(ctx context.Context, tenantID int, actor string, fileID int64, version int, content io.Reader, size int64) (models.File, error)
	// DeleteVersion removes the newest version and re-flags the previous
	// one as current. A no-op for version 1: the first version only goes
	// away with the whole file.
	DeleteVersion(ctx context.Context, tenantID int, fileID int64, version int) error
	CompleteVersion(ctx context.Context, tenantID int, fileID int64, atVersion int) error
	ContinueVersion(ctx context.Context, tenantID int, fileID int64, atVersion int) error
	MoveFile(ctx context.Context, tenantID int, actor string, fileID int64, toFolderID int64) error
	CopyFile(ctx context.Context, tenantID int, actor string, fileID int64, toFolderID int64) (models.File, error)
	DeleteFile(ctx context.Context, tenantID int, fileID int64) error
}

type fileService struct {
	txManager repositories.TxManager
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	orders    repositories.OrderRepository
	tags      repositories.TagRepository
	quota     QuotaService
	blobs     storage.BlobStore
	locker    locks.Locker
	indexer   search.Indexer
	index     treeIndex
	adjust    entryAdjuster
}

func NewFileService(
	txManager repositories.TxManager,
	folders repositories.FolderRepository,
	tree repositories.TreeRepository,
	files repositories.FileRepository,
	orders repositories.OrderRepository,
	tags repositories.TagRepository,
	quota QuotaService,
	blobs storage.BlobStore,
	locker locks.Locker,
	indexer search.Indexer,
) FileService {
	index := treeIndex{folders: folders, tree: tree, files: files}
	return &fileService{
		txManager: txManager,
		folders:   folders,
		files:     files,
		orders:    orders,
		tags:      tags,
		quota:     quota,
		blobs:     blobs,
		locker:    locker,
		indexer:   indexer,
		index:     index,
		adjust:    entryAdjuster{orders: orders, tags: tags, index: index},
	}
}

func fileIDLockKey(tenantID int) string {
	return fmt.Sprintf("docmeta:lock:fileid:%d", tenantID)
}

func (s *fileService) GetFile(ctx context.Context, tenantID int, fileID int64) (models.File, error) {
	file, err := s.files.GetCurrent(ctx, nil, tenantID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, "file not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "load file failed", err)
	}
	return file, nil
}

func (s *fileService) GetFileVersion(ctx context.Context, tenantID int, fileID int64, version int) (models.File, error) {
	file, err := s.files.GetVersion(ctx, nil, tenantID, fileID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, "file version not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "load file version failed", err)
	}
	return file, nil
}

func (s *fileService) ListVersions(ctx context.Context, tenantID int, fileID int64) ([]models.File, error) {
	versions, err := s.files.ListVersions(ctx, nil, tenantID, fileID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "list versions failed", err)
	}
	return versions, nil
}

func (s *fileService) ReadContent(ctx context.Context, tenantID int, fileID int64, version int) (io.ReadCloser, error) {
	var file models.File
	var err error
	if version > 0 {
		file, err = s.GetFileVersion(ctx, tenantID, fileID, version)
	} else {
		file, err = s.GetFile(ctx, tenantID, fileID)
	}
	if err != nil {
		return nil, err
	}

	reader, err := s.blobs.Read(ctx, storage.ContentPath(file.ID, file.Version, file.Title), 0, 0)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "read file content failed", err)
	}
	return reader, nil
}

func (s *fileService) SaveFile(ctx context.Context, tenantID int, actor string, in SaveFileInput) (models.File, error) {
	title := sanitizeTitle(in.Title)
	if title == "" {
		return models.File{}, newAppError(http.StatusBadRequest, "file title must not be empty", nil)
	}
	if in.ContentLength < 0 {
		return models.File{}, newAppError(http.StatusBadRequest, "negative content length", nil)
	}

	if err := s.quota.CheckUpload(tenantID, in.ContentLength); err != nil {
		return models.File{}, err
	}

	var prev models.File
	folderID := in.FolderID
	delta := in.ContentLength
	isNew := in.FileID == 0
	if !isNew {
		var err error
		prev, err = s.GetFile(ctx, tenantID, in.FileID)
		if err != nil {
			return models.File{}, err
		}
		// Folder byte counters track current-version totals, so a new
		// version replaces its predecessor in the arithmetic.
		folderID = prev.ParentID
		delta = in.ContentLength - prev.ContentLength
	}

	if _, err := s.folders.GetByID(ctx, nil, tenantID, folderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "load folder failed", err)
	}
	if err := s.quota.CheckDestination(ctx, nil, tenantID, folderID, delta); err != nil {
		return models.File{}, err
	}

	root, err := s.index.rootOf(ctx, nil, tenantID, folderID)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "load folder chain failed", err)
	}

	now := time.Now()
	file := models.File{
		TenantID:        tenantID,
		Version:         1,
		VersionGroup:    1,
		CurrentVersion:  true,
		ParentID:        folderID,
		Title:           title,
		ContentLength:   in.ContentLength,
		Category:        in.Category,
		CreatedBy:       actor,
		CreatedAt:       now,
		ModifiedBy:      actor,
		ModifiedAt:      now,
		Comment:         in.Comment,
		Encrypted:       in.Encrypted,
		Forcesave:       in.Forcesave,
		ThumbnailStatus: models.ThumbnailWaiting,
		RootID:          root.ID,
		RootType:        root.Type,
	}

	switch {
	case isNew:
		// Id allocation races with other workers; the named lock keeps
		// max+1 unique across processes. Held for the allocation and
		// insert only.
		err = s.locker.WithLock(ctx, fileIDLockKey(tenantID), func() error {
			return s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
				maxID, err := s.files.MaxID(ctx, tx, tenantID)
				if err != nil {
					return err
				}
				file.ID = maxID + 1
				return s.files.Create(ctx, tx, &file)
			})
		})
	case in.KeepVersion:
		file = prev
		file.ContentLength = in.ContentLength
		file.Title = title
		file.ModifiedBy = actor
		file.ModifiedAt = now
		err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			return s.files.UpdateVersion(ctx, tx, tenantID, prev.ID, prev.Version, map[string]interface{}{
				"content_length": in.ContentLength,
				"title":          title,
				"modified_by":    actor,
				"modified_at":    now,
			})
		})
	default:
		file.ID = prev.ID
		file.CreatedBy = prev.CreatedBy
		file.CreatedAt = prev.CreatedAt
		file.VersionGroup = prev.VersionGroup
		err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			maxVersion, err := s.files.MaxVersion(ctx, tx, tenantID, prev.ID)
			if err != nil {
				return err
			}
			file.Version = maxVersion + 1
			if err := s.files.UpdateVersion(ctx, tx, tenantID, prev.ID, prev.Version, map[string]interface{}{
				"current_version": false,
			}); err != nil {
				return err
			}
			return s.files.Create(ctx, tx, &file)
		})
	}
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "save file failed", err)
	}

	// Metadata is committed; the blob write happens outside the transaction.
	// A failure here is reconciled by deleting the orphan version (or the
	// whole file when it was just created).
	if err := s.blobs.Save(ctx, storage.ContentPath(file.ID, file.Version, file.Title), in.Content, in.ContentLength); err != nil {
		cleanupErr := s.compensateSave(ctx, tenantID, file, prev, isNew, in.KeepVersion)
		return models.File{}, newAppError(http.StatusInternalServerError, "save file content failed", errors.Join(err, cleanupErr))
	}

	if err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, folderID, delta); err != nil {
			return err
		}
		return s.quota.AddUsage(ctx, tx, tenantID, folderID, delta)
	}); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "apply size delta failed", err)
	}

	if isNew {
		if err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			return s.adjust.initCustomOrder(ctx, tx, tenantID, models.InternalID(file.ID).String(), models.EntryTypeFile, folderID)
		}); err != nil {
			logger.Warnf("file %d saved, custom order init failed: %v", file.ID, err)
		}
		if err := s.index.recountChain(ctx, nil, tenantID, folderID); err != nil {
			logger.Warnf("file %d saved, recount pending: %v", file.ID, err)
		}
	}

	s.indexer.IndexAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   models.InternalID(file.ID).String(),
		EntryType: int(models.EntryTypeFile),
		Title:     file.Title,
		ParentID:  file.ParentID,
	})
	return file, nil
}

// compensateSave undoes the metadata of a version whose blob write failed.
func (s *fileService) compensateSave(ctx context.Context, tenantID int, file models.File, prev models.File, isNew bool, keptVersion bool) error {
	return s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if isNew {
			return s.files.DeleteAllVersions(ctx, tx, tenantID, file.ID)
		}
		if keptVersion {
			// In-place update: roll the row back to its previous shape.
			return s.files.UpdateVersion(ctx, tx, tenantID, prev.ID, prev.Version, map[string]interface{}{
				"content_length": prev.ContentLength,
				"title":          prev.Title,
				"modified_by":    prev.ModifiedBy,
				"modified_at":    prev.ModifiedAt,
			})
		}
		if err := s.files.DeleteVersion(ctx, tx, tenantID, file.ID, file.Version); err != nil {
			return err
		}
		return s.files.SetCurrentVersion(ctx, tx, tenantID, prev.ID, prev.Version)
	})
}

func (s *fileService) ReplaceVersion(ctx context.Context, tenantID int, actor string, fileID int64, version int, content io.Reader, size int64) (models.File, error) {
	row, err := s.GetFileVersion(ctx, tenantID, fileID, version)
	if err != nil {
		return models.File{}, err
	}
	if err := s.quota.CheckUpload(tenantID, size); err != nil {
		return models.File{}, err
	}

	delta := int64(0)
	if row.CurrentVersion {
		delta = size - row.ContentLength
	}
	if err := s.quota.CheckDestination(ctx, nil, tenantID, row.ParentID, delta); err != nil {
		return models.File{}, err
	}

	now := time.Now()
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.files.UpdateVersion(ctx, tx, tenantID, fileID, version, map[string]interface{}{
			"content_length": size,
			"modified_by":    actor,
			"modified_at":    now,
		})
	})
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "replace version failed", err)
	}

	path := storage.ContentPath(fileID, version, row.Title)
	if err := s.blobs.Save(ctx, path, content, size); err != nil {
		// If the previous blob survived the failed overwrite the version is
		// intact; if it is gone the row is unrecoverable and goes away.
		exists, checkErr := s.blobs.IsFile(ctx, path)
		if checkErr == nil && !exists {
			dropErr := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
				if err := s.files.DeleteVersion(ctx, tx, tenantID, fileID, version); err != nil {
					return err
				}
				if row.CurrentVersion && version > 1 {
					return s.files.SetCurrentVersion(ctx, tx, tenantID, fileID, version-1)
				}
				return nil
			})
			return models.File{}, newAppError(http.StatusInternalServerError, "replace version content failed, version lost", errors.Join(err, dropErr))
		}
		restoreErr := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			return s.files.UpdateVersion(ctx, tx, tenantID, fileID, version, map[string]interface{}{
				"content_length": row.ContentLength,
				"modified_by":    row.ModifiedBy,
				"modified_at":    row.ModifiedAt,
			})
		})
		return models.File{}, newAppError(http.StatusInternalServerError, "replace version content failed", errors.Join(err, restoreErr))
	}

	if delta != 0 {
		if err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			if err := s.quota.ApplyDelta(ctx, tx, tenantID, row.ParentID, delta); err != nil {
				return err
			}
			return s.quota.AddUsage(ctx, tx, tenantID, row.ParentID, delta)
		}); err != nil {
			return models.File{}, newAppError(http.StatusInternalServerError, "apply size delta failed", err)
		}
	}

	row.ContentLength = size
	row.ModifiedBy = actor
	row.ModifiedAt = now
	return row, nil
}

func (s *fileService) DeleteVersion(ctx context.Context, tenantID int, fileID int64, version int) error {
	if version <= 1 {
		return nil
	}

	row, err := s.GetFileVersion(ctx, tenantID, fileID, version)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		maxVersion, err := s.files.MaxVersion(ctx, tx, tenantID, fileID)
		if err != nil {
			return err
		}
		if version != maxVersion {
			return errors.New("only the newest version can be deleted")
		}

		if err := s.files.DeleteVersion(ctx, tx, tenantID, fileID, version); err != nil {
			return err
		}
		if row.CurrentVersion {
			if err := s.files.SetCurrentVersion(ctx, tx, tenantID, fileID, version-1); err != nil {
				return err
			}
			newCurrent, err := s.files.GetVersion(ctx, tx, tenantID, fileID, version-1)
			if err != nil {
				return err
			}
			delta := newCurrent.ContentLength - row.ContentLength
			if err := s.quota.ApplyDelta(ctx, tx, tenantID, row.ParentID, delta); err != nil {
				return err
			}
			return s.quota.AddUsage(ctx, tx, tenantID, row.ParentID, delta)
		}
		return nil
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "delete version failed", err)
	}

	if err := s.blobs.DeleteDir(ctx, storage.VersionDirectory(fileID, version)); err != nil {
		logger.Warnf("version %d of file %d deleted, blob cleanup failed: %v", version, fileID, err)
	}
	return nil
}

func (s *fileService) CompleteVersion(ctx context.Context, tenantID int, fileID int64, atVersion int) error {
	return s.shiftGroup(ctx, tenantID, fileID, atVersion, 1)
}

func (s *fileService) ContinueVersion(ctx context.Context, tenantID int, fileID int64, atVersion int) error {
	return s.shiftGroup(ctx, tenantID, fileID, atVersion, -1)
}

func (s *fileService) shiftGroup(ctx context.Context, tenantID int, fileID int64, atVersion int, delta int) error {
	if _, err := s.GetFileVersion(ctx, tenantID, fileID, atVersion); err != nil {
		return err
	}
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.files.ShiftVersionGroup(ctx, tx, tenantID, fileID, atVersion, delta)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "adjust version group failed", err)
	}
	return nil
}

func (s *fileService) MoveFile(ctx context.Context, tenantID int, actor string, fileID int64, toFolderID int64) error {
	file, err := s.GetFile(ctx, tenantID, fileID)
	if err != nil {
		return err
	}
	if file.ParentID == toFolderID {
		return nil
	}
	if _, err := s.folders.GetByID(ctx, nil, tenantID, toFolderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "destination folder not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "load destination folder failed", err)
	}
	if err := s.quota.CheckDestination(ctx, nil, tenantID, toFolderID, file.ContentLength); err != nil {
		return err
	}

	oldParentID := file.ParentID
	entryID := models.InternalID(fileID).String()

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		newRoot, err := s.index.rootOf(ctx, tx, tenantID, toFolderID)
		if err != nil {
			return err
		}
		if err := s.files.UpdateAllVersions(ctx, tx, tenantID, fileID, map[string]interface{}{
			"parent_id":   toFolderID,
			"root_id":     newRoot.ID,
			"root_type":   newRoot.Type,
			"modified_by": actor,
			"modified_at": time.Now(),
		}); err != nil {
			return err
		}
		if err := s.adjust.onMove(ctx, tx, tenantID, actor, entryID, models.EntryTypeFile, oldParentID, toFolderID); err != nil {
			return err
		}
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, oldParentID, -file.ContentLength); err != nil {
			return err
		}
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, toFolderID, file.ContentLength); err != nil {
			return err
		}
		// Room and personal quotas are booked independently of the folder
		// counters; crossing a boundary shifts bytes between buckets.
		return s.quota.TransferUsage(ctx, tx, tenantID, oldParentID, toFolderID, file.ContentLength)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "move file failed", err)
	}

	if err := s.index.recountChain(ctx, nil, tenantID, oldParentID); err != nil {
		return newAppErrorWithData(http.StatusAccepted, "file moved, recount pending", fileID, fmt.Errorf("%w: %v", ErrRecountPending, err))
	}
	if err := s.index.recountChain(ctx, nil, tenantID, toFolderID); err != nil {
		return newAppErrorWithData(http.StatusAccepted, "file moved, recount pending", fileID, fmt.Errorf("%w: %v", ErrRecountPending, err))
	}

	s.indexer.IndexAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   entryID,
		EntryType: int(models.EntryTypeFile),
		Title:     file.Title,
		ParentID:  toFolderID,
	})
	return nil
}

func (s *fileService) CopyFile(ctx context.Context, tenantID int, actor string, fileID int64, toFolderID int64) (models.File, error) {
	src, err := s.GetFile(ctx, tenantID, fileID)
	if err != nil {
		return models.File{}, err
	}
	if _, err := s.folders.GetByID(ctx, nil, tenantID, toFolderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, "destination folder not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "load destination folder failed", err)
	}
	if err := s.quota.CheckDestination(ctx, nil, tenantID, toFolderID, src.ContentLength); err != nil {
		return models.File{}, err
	}

	root, err := s.index.rootOf(ctx, nil, tenantID, toFolderID)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "load destination chain failed", err)
	}

	// A copy starts a fresh version chain: one version, no history.
	now := time.Now()
	dst := models.File{
		TenantID:        tenantID,
		Version:         1,
		VersionGroup:    1,
		CurrentVersion:  true,
		ParentID:        toFolderID,
		Title:           src.Title,
		ContentLength:   src.ContentLength,
		Category:        src.Category,
		CreatedBy:       actor,
		CreatedAt:       now,
		ModifiedBy:      actor,
		ModifiedAt:      now,
		ConvertedType:   src.ConvertedType,
		Comment:         src.Comment,
		Encrypted:       src.Encrypted,
		ThumbnailStatus: src.ThumbnailStatus,
		RootID:          root.ID,
		RootType:        root.Type,
	}
	err = s.locker.WithLock(ctx, fileIDLockKey(tenantID), func() error {
		return s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			maxID, err := s.files.MaxID(ctx, tx, tenantID)
			if err != nil {
				return err
			}
			dst.ID = maxID + 1
			return s.files.Create(ctx, tx, &dst)
		})
	})
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "copy file failed", err)
	}

	srcPath := storage.ContentPath(src.ID, src.Version, src.Title)
	dstPath := storage.ContentPath(dst.ID, dst.Version, dst.Title)
	if err := s.blobs.Copy(ctx, srcPath, dstPath); err != nil {
		cleanupErr := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			return s.files.DeleteAllVersions(ctx, tx, tenantID, dst.ID)
		})
		return models.File{}, newAppError(http.StatusInternalServerError, "copy file content failed", errors.Join(err, cleanupErr))
	}
	if src.ThumbnailStatus == models.ThumbnailCreated {
		if err := s.blobs.Copy(ctx, storage.ThumbnailPath(src.ID, src.Version), storage.ThumbnailPath(dst.ID, dst.Version)); err != nil {
			logger.Warnf("file %d copied, thumbnail copy failed: %v", dst.ID, err)
			dst.ThumbnailStatus = models.ThumbnailWaiting
			if updErr := s.files.UpdateVersion(ctx, nil, tenantID, dst.ID, dst.Version, map[string]interface{}{
				"thumb": models.ThumbnailWaiting,
			}); updErr != nil {
				logger.Warnf("file %d copied, thumbnail status reset failed: %v", dst.ID, updErr)
			}
		}
	}

	if err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, toFolderID, dst.ContentLength); err != nil {
			return err
		}
		if err := s.quota.AddUsage(ctx, tx, tenantID, toFolderID, dst.ContentLength); err != nil {
			return err
		}
		return s.adjust.initCustomOrder(ctx, tx, tenantID, models.InternalID(dst.ID).String(), models.EntryTypeFile, toFolderID)
	}); err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "apply size delta failed", err)
	}

	if err := s.index.recountChain(ctx, nil, tenantID, toFolderID); err != nil {
		logger.Warnf("file %d copied, recount pending: %v", dst.ID, err)
	}
	s.indexer.IndexAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   models.InternalID(dst.ID).String(),
		EntryType: int(models.EntryTypeFile),
		Title:     dst.Title,
		ParentID:  toFolderID,
	})
	return dst, nil
}

func (s *fileService) DeleteFile(ctx context.Context, tenantID int, fileID int64) error {
	file, err := s.GetFile(ctx, tenantID, fileID)
	if err != nil {
		return err
	}
	entryID := models.InternalID(fileID).String()

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.files.DeleteAllVersions(ctx, tx, tenantID, fileID); err != nil {
			return err
		}
		if err := s.tags.DeleteLinksByEntryIDs(ctx, tx, tenantID, []string{entryID}, models.EntryTypeFile); err != nil {
			return err
		}
		if err := s.orders.Delete(ctx, tx, tenantID, entryID, models.EntryTypeFile); err != nil {
			return err
		}
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, file.ParentID, -file.ContentLength); err != nil {
			return err
		}
		return s.quota.AddUsage(ctx, tx, tenantID, file.ParentID, -file.ContentLength)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "delete file failed", err)
	}

	if err := s.blobs.DeleteDir(ctx, storage.FileDirectory(fileID)); err != nil {
		logger.Warnf("file %d deleted, blob cleanup failed: %v", fileID, err)
	}
	if err := s.index.recountChain(ctx, nil, tenantID, file.ParentID); err != nil {
		logger.Warnf("file %d deleted, recount pending: %v", fileID, err)
	}
	s.indexer.DeleteAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   entryID,
		EntryType: int(models.EntryTypeFile),
		Title:     file.Title,
	})
	return nil
}

// sanitizeTitle strips characters unsafe for storage paths and lower-cases
// the extension so path derivation stays stable.
func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_",
	)
	title = replacer.Replace(title)

	if idx := strings.LastIndex(title, "."); idx >= 0 {
		title = title[:idx] + strings.ToLower(title[idx:])
	}
	return title
}
