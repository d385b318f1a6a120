package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
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

// Well-known bunch keys under the "files" module.
const (
	BunchModuleFiles = "files"

	BunchMy           = "my"
	BunchCommon       = "common"
	BunchTrash        = "trash"
	BunchShare        = "share"
	BunchRecent       = "recent"
	BunchFavorites    = "favorites"
	BunchTemplates    = "templates"
	BunchPrivacy      = "privacy"
	BunchVirtualRooms = "virtualrooms"
	BunchArchive      = "archive"
)

type CreateFolderInput struct {
	ParentID   int64
	Title      string
	Type       models.FolderType
	Private    bool
	Color      string
	IndexingOn bool
	Quota      int64
}

type FolderService interface {
	GetFolder(ctx context.Context, tenantID int, folderID int64) (models.Folder, error)
	CreateFolder(ctx context.Context, tenantID int, actor string, in CreateFolderInput) (models.Folder, error)
	RenameFolder(ctx context.Context, tenantID int, actor string, folderID int64, title string) (models.Folder, error)
	MoveFolder(ctx context.Context, tenantID int, actor string, folderID int64, newParentID int64) error
	DeleteFolder(ctx context.Context, tenantID int, folderID int64) error
	// GetAncestors returns the chain ordered tenant root first, the folder
	// itself last. Unknown ids yield an empty chain, not an error.
	GetAncestors(ctx context.Context, tenantID int, folderID int64) ([]models.Folder, error)
	GetDescendants(ctx context.Context, tenantID int, folderID int64, maxLevel int) ([]models.Folder, error)
	// GetOrCreateBunchFolder resolves a well-known folder by composite key,
	// creating it lazily under a cross-process lock on first use.
	GetOrCreateBunchFolder(ctx context.Context, tenantID int, actor string, module string, bunch string, data string) (models.Folder, error)
	GetTrashFolder(ctx context.Context, tenantID int, userID string) (models.Folder, error)
	GetMyFolder(ctx context.Context, tenantID int, userID string) (models.Folder, error)
	// RecountFolders recomputes the denormalized counters of the folder and
	// its ancestors from the closure table. Safe to call concurrently.
	RecountFolders(ctx context.Context, tenantID int, folderID int64) error
}

type folderService struct {
	txManager repositories.TxManager
	folders   repositories.FolderRepository
	tree      repositories.TreeRepository
	files     repositories.FileRepository
	orders    repositories.OrderRepository
	tags      repositories.TagRepository
	bunch     repositories.BunchRepository
	quota     QuotaService
	blobs     storage.BlobStore
	locker    locks.Locker
	indexer   search.Indexer
	index     treeIndex
	adjust    entryAdjuster
}

func NewFolderService(
	txManager repositories.TxManager,
	folders repositories.FolderRepository,
	tree repositories.TreeRepository,
	files repositories.FileRepository,
	orders repositories.OrderRepository,
	tags repositories.TagRepository,
	bunch repositories.BunchRepository,
	quota QuotaService,
	blobs storage.BlobStore,
	locker locks.Locker,
	indexer search.Indexer,
) FolderService {
	index := treeIndex{folders: folders, tree: tree, files: files}
	return &folderService{
		txManager: txManager,
		folders:   folders,
		tree:      tree,
		files:     files,
		orders:    orders,
		tags:      tags,
		bunch:     bunch,
		quota:     quota,
		blobs:     blobs,
		locker:    locker,
		indexer:   indexer,
		index:     index,
		adjust:    entryAdjuster{orders: orders, tags: tags, index: index},
	}
}

func (s *folderService) GetFolder(ctx context.Context, tenantID int, folderID int64) (models.Folder, error) {
	folder, err := s.folders.GetByID(ctx, nil, tenantID, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "load folder failed", err)
	}
	return folder, nil
}

func (s *folderService) CreateFolder(ctx context.Context, tenantID int, actor string, in CreateFolderInput) (models.Folder, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Folder{}, newAppError(http.StatusBadRequest, "folder title must not be empty", nil)
	}

	parent, err := s.folders.GetByID(ctx, nil, tenantID, in.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "parent folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "load parent folder failed", err)
	}

	quota := in.Quota
	if quota == 0 {
		quota = models.QuotaDefault
	}
	now := time.Now()
	folder := models.Folder{
		TenantID:   tenantID,
		ParentID:   parent.ID,
		Title:      title,
		Type:       in.Type,
		CreatedBy:  actor,
		CreatedAt:  now,
		ModifiedBy: actor,
		ModifiedAt: now,
		Private:    in.Private,
		Color:      in.Color,
		IndexingOn: in.IndexingOn,
		Quota:      quota,
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		folder.ID = 0
		if err := s.folders.Create(ctx, tx, &folder); err != nil {
			return err
		}
		if err := s.index.attach(ctx, tx, &folder); err != nil {
			return err
		}
		return s.adjust.initCustomOrder(ctx, tx, tenantID, models.InternalID(folder.ID).String(), models.EntryTypeFolder, parent.ID)
	})
	if err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "create folder failed", err)
	}

	if err := s.index.recountChain(ctx, nil, tenantID, parent.ID); err != nil {
		logger.Warnf("folder %d created, parent recount pending: %v", folder.ID, err)
	}
	s.indexer.IndexAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   models.InternalID(folder.ID).String(),
		EntryType: int(models.EntryTypeFolder),
		Title:     folder.Title,
		ParentID:  folder.ParentID,
	})
	return folder, nil
}

func (s *folderService) RenameFolder(ctx context.Context, tenantID int, actor string, folderID int64, title string) (models.Folder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Folder{}, newAppError(http.StatusBadRequest, "folder title must not be empty", nil)
	}

	folder, err := s.GetFolder(ctx, tenantID, folderID)
	if err != nil {
		return models.Folder{}, err
	}

	updates := map[string]interface{}{
		"title":       title,
		"modified_by": actor,
		"modified_at": time.Now(),
	}
	if err := s.folders.UpdateByID(ctx, nil, tenantID, folderID, updates); err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "rename folder failed", err)
	}

	folder.Title = title
	folder.ModifiedBy = actor
	s.indexer.IndexAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   models.InternalID(folderID).String(),
		EntryType: int(models.EntryTypeFolder),
		Title:     title,
		ParentID:  folder.ParentID,
	})
	return folder, nil
}

func (s *folderService) MoveFolder(ctx context.Context, tenantID int, actor string, folderID int64, newParentID int64) error {
	folder, err := s.GetFolder(ctx, tenantID, folderID)
	if err != nil {
		return err
	}
	if !folder.Type.IsMovable() {
		return newAppError(http.StatusBadRequest, "system folders cannot be moved", nil)
	}
	if folderID == newParentID {
		return newAppError(http.StatusBadRequest, "cannot move a folder into itself", nil)
	}
	if _, err := s.GetFolder(ctx, tenantID, newParentID); err != nil {
		return err
	}

	// Reject moving under one of the folder's own descendants.
	destAncestors, err := s.index.ancestorIDs(ctx, nil, tenantID, newParentID)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "load destination chain failed", err)
	}
	for _, id := range destAncestors {
		if id == folderID {
			return newAppError(http.StatusBadRequest, "cannot move a folder into its own subtree", nil)
		}
	}

	// The subtree brings folder.Counter bytes into the destination bucket.
	if err := s.quota.CheckDestination(ctx, nil, tenantID, newParentID, folder.Counter); err != nil {
		return err
	}

	oldParentID := folder.ParentID
	entryID := models.InternalID(folderID).String()

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		subEdges, err := s.tree.DescendantEdges(ctx, tx, tenantID, folderID, 0)
		if err != nil {
			return err
		}
		subIDs := make([]int64, 0, len(subEdges))
		for _, e := range subEdges {
			subIDs = append(subIDs, e.FolderID)
		}

		// Sever every path from the subtree to ancestors outside it, then
		// reattach the whole subtree under the new parent in one bulk
		// insert: no per-node recursion.
		if err := s.tree.SeverSubtree(ctx, tx, tenantID, subIDs); err != nil {
			return err
		}
		ancEdges, err := s.tree.AncestorEdges(ctx, tx, tenantID, newParentID)
		if err != nil {
			return err
		}
		newEdges := make([]models.TreeEdge, 0, len(subEdges)*len(ancEdges))
		for _, sub := range subEdges {
			for _, anc := range ancEdges {
				newEdges = append(newEdges, models.TreeEdge{
					TenantID: tenantID,
					FolderID: sub.FolderID,
					ParentID: anc.ParentID,
					Level:    sub.Level + 1 + anc.Level,
				})
			}
		}
		if err := s.tree.InsertEdges(ctx, tx, newEdges); err != nil {
			return err
		}

		if err := s.folders.UpdateByID(ctx, tx, tenantID, folderID, map[string]interface{}{
			"parent_id":   newParentID,
			"modified_by": actor,
			"modified_at": time.Now(),
		}); err != nil {
			return err
		}

		if err := s.adjust.onMove(ctx, tx, tenantID, actor, entryID, models.EntryTypeFolder, oldParentID, newParentID); err != nil {
			return err
		}

		// The subtree carries folder.Counter bytes with it.
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, oldParentID, -folder.Counter); err != nil {
			return err
		}
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, newParentID, folder.Counter); err != nil {
			return err
		}
		return s.quota.TransferUsage(ctx, tx, tenantID, oldParentID, newParentID, folder.Counter)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "move folder failed", err)
	}

	if err := s.recountAfterMove(ctx, tenantID, oldParentID, newParentID); err != nil {
		return newAppErrorWithData(http.StatusAccepted, "folder moved, recount pending", folderID, err)
	}
	s.indexer.IndexAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   entryID,
		EntryType: int(models.EntryTypeFolder),
		Title:     folder.Title,
		ParentID:  newParentID,
	})
	return nil
}

func (s *folderService) recountAfterMove(ctx context.Context, tenantID int, oldParentID int64, newParentID int64) error {
	if err := s.index.recountChain(ctx, nil, tenantID, oldParentID); err != nil {
		return fmt.Errorf("%w: old chain of folder %d: %v", ErrRecountPending, oldParentID, err)
	}
	if err := s.index.recountChain(ctx, nil, tenantID, newParentID); err != nil {
		return fmt.Errorf("%w: new chain of folder %d: %v", ErrRecountPending, newParentID, err)
	}
	return nil
}

func (s *folderService) DeleteFolder(ctx context.Context, tenantID int, folderID int64) error {
	folder, err := s.GetFolder(ctx, tenantID, folderID)
	if err != nil {
		return err
	}
	if !folder.Type.IsMovable() {
		return newAppError(http.StatusBadRequest, "system folders cannot be deleted", nil)
	}

	var removedFiles []models.File
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		descIDs, err := s.index.descendantIDs(ctx, tx, tenantID, folderID, 0)
		if err != nil {
			return err
		}

		removedFiles, err = s.files.ListByParents(ctx, tx, tenantID, descIDs)
		if err != nil {
			return err
		}
		removedSize, err := s.files.SumCurrentSizeByParents(ctx, tx, tenantID, descIDs)
		if err != nil {
			return err
		}

		folderEntryIDs := make([]string, 0, len(descIDs))
		for _, id := range descIDs {
			folderEntryIDs = append(folderEntryIDs, models.InternalID(id).String())
		}
		fileEntrySet := make(map[string]struct{}, len(removedFiles))
		fileEntryIDs := make([]string, 0, len(removedFiles))
		for _, f := range removedFiles {
			key := models.InternalID(f.ID).String()
			if _, ok := fileEntrySet[key]; !ok {
				fileEntrySet[key] = struct{}{}
				fileEntryIDs = append(fileEntryIDs, key)
			}
		}

		if err := s.quota.AddUsage(ctx, tx, tenantID, folderID, -removedSize); err != nil {
			return err
		}
		if err := s.quota.ApplyDelta(ctx, tx, tenantID, folder.ParentID, -removedSize); err != nil {
			return err
		}

		if err := s.tags.DeleteLinksByEntryIDs(ctx, tx, tenantID, folderEntryIDs, models.EntryTypeFolder); err != nil {
			return err
		}
		if err := s.tags.DeleteLinksByEntryIDs(ctx, tx, tenantID, fileEntryIDs, models.EntryTypeFile); err != nil {
			return err
		}
		if err := s.orders.DeleteByEntryIDs(ctx, tx, tenantID, folderEntryIDs, models.EntryTypeFolder); err != nil {
			return err
		}
		if err := s.orders.DeleteByEntryIDs(ctx, tx, tenantID, fileEntryIDs, models.EntryTypeFile); err != nil {
			return err
		}
		if err := s.bunch.DeleteByLeftNodes(ctx, tx, tenantID, folderEntryIDs); err != nil {
			return err
		}
		if err := s.files.DeleteByParents(ctx, tx, tenantID, descIDs); err != nil {
			return err
		}
		if err := s.tree.DeleteByFolderIDs(ctx, tx, tenantID, descIDs); err != nil {
			return err
		}
		return s.folders.DeleteByIDs(ctx, tx, tenantID, descIDs)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "delete folder failed", err)
	}

	cleaned := make(map[int64]struct{}, len(removedFiles))
	for _, f := range removedFiles {
		if _, ok := cleaned[f.ID]; ok {
			continue
		}
		cleaned[f.ID] = struct{}{}
		if err := s.blobs.DeleteDir(ctx, storage.FileDirectory(f.ID)); err != nil {
			logger.Warnf("folder %d deleted, blob cleanup of file %d failed: %v", folderID, f.ID, err)
		}
	}
	if err := s.index.recountChain(ctx, nil, tenantID, folder.ParentID); err != nil {
		logger.Warnf("folder %d deleted, parent recount pending: %v", folderID, err)
	}
	for _, f := range removedFiles {
		s.indexer.DeleteAsync(ctx, search.Record{
			TenantID:  tenantID,
			EntryID:   models.InternalID(f.ID).String(),
			EntryType: int(models.EntryTypeFile),
			Title:     f.Title,
		})
	}
	s.indexer.DeleteAsync(ctx, search.Record{
		TenantID:  tenantID,
		EntryID:   models.InternalID(folderID).String(),
		EntryType: int(models.EntryTypeFolder),
		Title:     folder.Title,
	})
	return nil
}

func (s *folderService) GetAncestors(ctx context.Context, tenantID int, folderID int64) ([]models.Folder, error) {
	chain, err := s.index.ancestorChain(ctx, nil, tenantID, folderID)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "load ancestors failed", err)
	}
	return chain, nil
}

func (s *folderService) GetDescendants(ctx context.Context, tenantID int, folderID int64, maxLevel int) ([]models.Folder, error) {
	ids, err := s.index.descendantIDs(ctx, nil, tenantID, folderID, maxLevel)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "load descendants failed", err)
	}
	folders, err := s.folders.ListByIDs(ctx, nil, tenantID, ids)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "load descendants failed", err)
	}
	return folders, nil
}

func (s *folderService) GetOrCreateBunchFolder(ctx context.Context, tenantID int, actor string, module string, bunch string, data string) (models.Folder, error) {
	key := bunchKey(module, bunch, data)

	if folder, ok, err := s.lookupBunch(ctx, tenantID, key); err != nil {
		return models.Folder{}, err
	} else if ok {
		return folder, nil
	}

	var folder models.Folder
	lockKey := fmt.Sprintf("docmeta:lock:bunch:%d:%s", tenantID, key)
	err := s.locker.WithLock(ctx, lockKey, func() error {
		// Another worker may have created it while we waited.
		if existing, ok, err := s.lookupBunch(ctx, tenantID, key); err != nil {
			return err
		} else if ok {
			folder = existing
			return nil
		}

		folderType, title := bunchFolderType(bunch)
		now := time.Now()
		folder = models.Folder{
			TenantID:   tenantID,
			ParentID:   0,
			Title:      title,
			Type:       folderType,
			CreatedBy:  actor,
			CreatedAt:  now,
			ModifiedBy: actor,
			ModifiedAt: now,
			Quota:      models.QuotaDefault,
		}
		return s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			folder.ID = 0
			if err := s.folders.Create(ctx, tx, &folder); err != nil {
				return err
			}
			if err := s.index.attach(ctx, tx, &folder); err != nil {
				return err
			}
			return s.bunch.Create(ctx, tx, &models.BunchObject{
				TenantID:  tenantID,
				RightNode: key,
				LeftNode:  strconv.FormatInt(folder.ID, 10),
			})
		})
	})
	if err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "resolve well-known folder failed", err)
	}
	return folder, nil
}

func (s *folderService) lookupBunch(ctx context.Context, tenantID int, key string) (models.Folder, bool, error) {
	leftNode, err := s.bunch.GetLeftNode(ctx, nil, tenantID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, false, nil
		}
		return models.Folder{}, false, newAppError(http.StatusInternalServerError, "resolve well-known folder failed", err)
	}

	folderID, err := strconv.ParseInt(leftNode, 10, 64)
	if err != nil {
		return models.Folder{}, false, newAppError(http.StatusInternalServerError, "corrupt bunch mapping", err)
	}
	folder, err := s.folders.GetByID(ctx, nil, tenantID, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Stale mapping; recreate below.
			return models.Folder{}, false, nil
		}
		return models.Folder{}, false, newAppError(http.StatusInternalServerError, "resolve well-known folder failed", err)
	}
	return folder, true, nil
}

func (s *folderService) GetTrashFolder(ctx context.Context, tenantID int, userID string) (models.Folder, error) {
	return s.GetOrCreateBunchFolder(ctx, tenantID, userID, BunchModuleFiles, BunchTrash, userID)
}

func (s *folderService) GetMyFolder(ctx context.Context, tenantID int, userID string) (models.Folder, error) {
	return s.GetOrCreateBunchFolder(ctx, tenantID, userID, BunchModuleFiles, BunchMy, userID)
}

func (s *folderService) RecountFolders(ctx context.Context, tenantID int, folderID int64) error {
	if err := s.index.recountChain(ctx, nil, tenantID, folderID); err != nil {
		return newAppError(http.StatusInternalServerError, "recount failed", err)
	}
	return nil
}

func bunchKey(module string, bunch string, data string) string {
	if data == "" {
		return module + "/" + bunch
	}
	return module + "/" + bunch + "/" + data
}

func bunchFolderType(bunch string) (models.FolderType, string) {
	switch bunch {
	case BunchMy:
		return models.FolderUser, "My documents"
	case BunchCommon:
		return models.FolderCommon, "Common documents"
	case BunchTrash:
		return models.FolderTrash, "Trash"
	case BunchShare:
		return models.FolderShare, "Shared with me"
	case BunchRecent:
		return models.FolderRecent, "Recent"
	case BunchFavorites:
		return models.FolderFavorites, "Favorites"
	case BunchTemplates:
		return models.FolderTemplates, "Templates"
	case BunchPrivacy:
		return models.FolderPrivacy, "Private"
	case BunchVirtualRooms:
		return models.FolderVirtualRooms, "Rooms"
	case BunchArchive:
		return models.FolderArchive, "Archive"
	default:
		return models.FolderBunch, bunch
	}
}
