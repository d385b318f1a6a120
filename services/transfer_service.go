package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"docmeta/models"
	"docmeta/repositories"
)

// TransferResult reports where the entry ended up. EntryID is the destination
// id in the backend's own id space. RecountPending is set when the relocation
// committed but the denormalized counters still need a recount pass.
type TransferResult struct {
	EntryID        string
	RecountPending bool
}

// TransferService is the relocation front door: it resolves raw operand ids,
// routes same-backend moves and copies to the folder/file services, and
// drives cross-backend relocation through provider adapters with the
// copy-verify-delete protocol.
type TransferService interface {
	Move(ctx context.Context, tenantID int, actor string, rawEntryID string, entryType models.EntryType, rawDestID string) (TransferResult, error)
	Copy(ctx context.Context, tenantID int, actor string, rawEntryID string, entryType models.EntryType, rawDestID string) (TransferResult, error)
}

type transferService struct {
	identity IdentityService
	folderSv FolderService
	fileSv   FileService
	selector *ProviderSelector
	folders  repositories.FolderRepository
	files    repositories.FileRepository
}

func NewTransferService(
	identity IdentityService,
	folderSv FolderService,
	fileSv FileService,
	selector *ProviderSelector,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
) TransferService {
	return &transferService{
		identity: identity,
		folderSv: folderSv,
		fileSv:   fileSv,
		selector: selector,
		folders:  folders,
		files:    files,
	}
}

func (s *transferService) Move(ctx context.Context, tenantID int, actor string, rawEntryID string, entryType models.EntryType, rawDestID string) (TransferResult, error) {
	return s.transfer(ctx, tenantID, actor, rawEntryID, entryType, rawDestID, true)
}

func (s *transferService) Copy(ctx context.Context, tenantID int, actor string, rawEntryID string, entryType models.EntryType, rawDestID string) (TransferResult, error) {
	return s.transfer(ctx, tenantID, actor, rawEntryID, entryType, rawDestID, false)
}

func (s *transferService) transfer(ctx context.Context, tenantID int, actor string, rawEntryID string, entryType models.EntryType, rawDestID string, deleteSource bool) (TransferResult, error) {
	src, err := s.identity.Resolve(ctx, tenantID, rawEntryID, true)
	if err != nil {
		return TransferResult{}, err
	}
	dest, err := s.identity.Resolve(ctx, tenantID, rawDestID, true)
	if err != nil {
		return TransferResult{}, err
	}
	if src.IsZero() || dest.IsZero() {
		return TransferResult{}, newAppError(http.StatusBadRequest, "entry and destination ids are required", nil)
	}

	switch {
	case src.IsInternal() && dest.IsInternal():
		return s.transferInternal(ctx, tenantID, actor, src.Num, entryType, dest.Num, deleteSource)
	case src.IsInternal():
		return s.transferOut(ctx, tenantID, src.Num, entryType, rawDestID, deleteSource)
	case dest.IsInternal():
		return s.transferIn(ctx, tenantID, actor, rawEntryID, entryType, dest.Num, deleteSource)
	default:
		return s.transferAcross(ctx, tenantID, rawEntryID, entryType, rawDestID, deleteSource)
	}
}

func (s *transferService) transferInternal(ctx context.Context, tenantID int, actor string, entryID int64, entryType models.EntryType, destID int64, deleteSource bool) (TransferResult, error) {
	if entryType == models.EntryTypeFolder {
		if deleteSource {
			err := s.folderSv.MoveFolder(ctx, tenantID, actor, entryID, destID)
			pending, err := recountPending(err)
			if err != nil {
				return TransferResult{}, err
			}
			return TransferResult{EntryID: models.InternalID(entryID).String(), RecountPending: pending}, nil
		}
		// A copy into the folder's own subtree would recurse over the copies
		// it creates.
		destChain, err := s.folderSv.GetAncestors(ctx, tenantID, destID)
		if err != nil {
			return TransferResult{}, err
		}
		for _, anc := range destChain {
			if anc.ID == entryID {
				return TransferResult{}, newAppError(http.StatusBadRequest, "cannot copy a folder into its own subtree", nil)
			}
		}
		newID, pending, err := s.copyFolderInternal(ctx, tenantID, actor, entryID, destID)
		if err != nil {
			return TransferResult{}, err
		}
		return TransferResult{EntryID: models.InternalID(newID).String(), RecountPending: pending}, nil
	}

	if deleteSource {
		err := s.fileSv.MoveFile(ctx, tenantID, actor, entryID, destID)
		pending, err := recountPending(err)
		if err != nil {
			return TransferResult{}, err
		}
		return TransferResult{EntryID: models.InternalID(entryID).String(), RecountPending: pending}, nil
	}
	copied, err := s.fileSv.CopyFile(ctx, tenantID, actor, entryID, destID)
	if err != nil {
		return TransferResult{}, err
	}
	return TransferResult{EntryID: models.InternalID(copied.ID).String()}, nil
}

// copyFolderInternal clones a folder subtree inside the internal backend.
// Files are copied at their current version only.
func (s *transferService) copyFolderInternal(ctx context.Context, tenantID int, actor string, folderID int64, destID int64) (int64, bool, error) {
	src, err := s.folderSv.GetFolder(ctx, tenantID, folderID)
	if err != nil {
		return 0, false, err
	}

	created, err := s.folderSv.CreateFolder(ctx, tenantID, actor, CreateFolderInput{
		ParentID:   destID,
		Title:      src.Title,
		Type:       src.Type,
		Private:    src.Private,
		Color:      src.Color,
		IndexingOn: src.IndexingOn,
		Quota:      src.Quota,
	})
	if err != nil {
		return 0, false, err
	}

	pending := false
	files, err := s.files.ListCurrentByParents(ctx, nil, tenantID, []int64{folderID})
	if err != nil {
		return 0, false, newAppError(http.StatusInternalServerError, "list folder files failed", err)
	}
	for _, f := range files {
		if _, err := s.fileSv.CopyFile(ctx, tenantID, actor, f.ID, created.ID); err != nil {
			return 0, false, err
		}
	}

	children, err := s.folders.ListByParent(ctx, nil, tenantID, folderID)
	if err != nil {
		return 0, false, newAppError(http.StatusInternalServerError, "list subfolders failed", err)
	}
	for _, child := range children {
		if _, childPending, err := s.copyFolderInternal(ctx, tenantID, actor, child.ID, created.ID); err != nil {
			return 0, false, err
		} else if childPending {
			pending = true
		}
	}
	return created.ID, pending, nil
}

// transferOut relocates an internal entry onto an external backend. The
// source survives until every destination object is confirmed readable.
func (s *transferService) transferOut(ctx context.Context, tenantID int, entryID int64, entryType models.EntryType, rawDestID string, deleteSource bool) (TransferResult, error) {
	provider, ok := s.selector.Select(rawDestID)
	if !ok {
		return TransferResult{}, newAppError(http.StatusBadRequest, "unknown storage provider for destination", nil)
	}

	if entryType == models.EntryTypeFile {
		newID, err := s.copyFileOut(ctx, tenantID, entryID, provider, rawDestID)
		if err != nil {
			return TransferResult{}, err
		}
		if deleteSource {
			if err := s.fileSv.DeleteFile(ctx, tenantID, entryID); err != nil {
				return TransferResult{}, err
			}
		}
		return TransferResult{EntryID: newID}, nil
	}

	newID, err := s.copyFolderOut(ctx, tenantID, entryID, provider, rawDestID)
	if err != nil {
		return TransferResult{}, err
	}
	if deleteSource {
		if err := s.folderSv.DeleteFolder(ctx, tenantID, entryID); err != nil {
			return TransferResult{}, err
		}
	}
	return TransferResult{EntryID: newID}, nil
}

func (s *transferService) copyFileOut(ctx context.Context, tenantID int, fileID int64, provider Provider, destFolderID string) (string, error) {
	file, err := s.fileSv.GetFile(ctx, tenantID, fileID)
	if err != nil {
		return "", err
	}
	content, err := s.fileSv.ReadContent(ctx, tenantID, fileID, 0)
	if err != nil {
		return "", err
	}
	defer content.Close()

	newID, err := provider.Files().SaveContent(ctx, destFolderID, file.Title, file.ContentLength, content)
	if err != nil {
		return "", newAppError(http.StatusInternalServerError, "provider upload failed", err)
	}
	if err := s.verifyProviderFile(ctx, provider, newID, file.ContentLength); err != nil {
		return "", err
	}
	return newID, nil
}

func (s *transferService) copyFolderOut(ctx context.Context, tenantID int, folderID int64, provider Provider, destFolderID string) (string, error) {
	src, err := s.folderSv.GetFolder(ctx, tenantID, folderID)
	if err != nil {
		return "", err
	}
	newFolderID, err := provider.Folders().CreateFolder(ctx, destFolderID, src.Title)
	if err != nil {
		return "", newAppError(http.StatusInternalServerError, "provider folder create failed", err)
	}

	files, err := s.files.ListCurrentByParents(ctx, nil, tenantID, []int64{folderID})
	if err != nil {
		return "", newAppError(http.StatusInternalServerError, "list folder files failed", err)
	}
	for _, f := range files {
		if _, err := s.copyFileOut(ctx, tenantID, f.ID, provider, newFolderID); err != nil {
			return "", err
		}
	}

	children, err := s.folders.ListByParent(ctx, nil, tenantID, folderID)
	if err != nil {
		return "", newAppError(http.StatusInternalServerError, "list subfolders failed", err)
	}
	for _, child := range children {
		if _, err := s.copyFolderOut(ctx, tenantID, child.ID, provider, newFolderID); err != nil {
			return "", err
		}
	}
	return newFolderID, nil
}

// transferIn relocates an external entry into the internal backend.
func (s *transferService) transferIn(ctx context.Context, tenantID int, actor string, rawEntryID string, entryType models.EntryType, destID int64, deleteSource bool) (TransferResult, error) {
	provider, ok := s.selector.Select(rawEntryID)
	if !ok {
		return TransferResult{}, newAppError(http.StatusBadRequest, "unknown storage provider for entry", nil)
	}

	if entryType == models.EntryTypeFile {
		saved, err := s.copyFileIn(ctx, tenantID, actor, provider, rawEntryID, destID)
		if err != nil {
			return TransferResult{}, err
		}
		if deleteSource {
			if err := provider.Files().Delete(ctx, rawEntryID); err != nil {
				return TransferResult{}, newAppError(http.StatusInternalServerError, "provider delete failed", err)
			}
		}
		return TransferResult{EntryID: models.InternalID(saved.ID).String()}, nil
	}

	newID, err := s.copyFolderIn(ctx, tenantID, actor, provider, rawEntryID, destID)
	if err != nil {
		return TransferResult{}, err
	}
	if deleteSource {
		if err := provider.Folders().Delete(ctx, rawEntryID); err != nil {
			return TransferResult{}, newAppError(http.StatusInternalServerError, "provider delete failed", err)
		}
	}
	return TransferResult{EntryID: models.InternalID(newID).String()}, nil
}

func (s *transferService) copyFileIn(ctx context.Context, tenantID int, actor string, provider Provider, rawFileID string, destID int64) (models.File, error) {
	entry, err := provider.Files().GetFile(ctx, rawFileID)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "provider lookup failed", err)
	}
	content, err := provider.Files().ReadContent(ctx, rawFileID)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "provider read failed", err)
	}
	defer content.Close()

	return s.fileSv.SaveFile(ctx, tenantID, actor, SaveFileInput{
		FolderID:      destID,
		Title:         entry.Title,
		ContentLength: entry.Size,
		Content:       content,
	})
}

func (s *transferService) copyFolderIn(ctx context.Context, tenantID int, actor string, provider Provider, rawFolderID string, destID int64) (int64, error) {
	entry, err := provider.Folders().GetFolder(ctx, rawFolderID)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "provider lookup failed", err)
	}
	created, err := s.folderSv.CreateFolder(ctx, tenantID, actor, CreateFolderInput{
		ParentID: destID,
		Title:    entry.Title,
		Type:     models.FolderDefault,
	})
	if err != nil {
		return 0, err
	}

	children, err := provider.Folders().ListChildren(ctx, rawFolderID)
	if err != nil {
		return 0, newAppError(http.StatusInternalServerError, "provider list failed", err)
	}
	for _, child := range children {
		if child.IsFolder {
			if _, err := s.copyFolderIn(ctx, tenantID, actor, provider, child.ID, created.ID); err != nil {
				return 0, err
			}
			continue
		}
		if _, err := s.copyFileIn(ctx, tenantID, actor, provider, child.ID, created.ID); err != nil {
			return 0, err
		}
	}
	return created.ID, nil
}

// transferAcross relocates between two external backends, streaming through
// this process.
func (s *transferService) transferAcross(ctx context.Context, tenantID int, rawEntryID string, entryType models.EntryType, rawDestID string, deleteSource bool) (TransferResult, error) {
	srcProvider, ok := s.selector.Select(rawEntryID)
	if !ok {
		return TransferResult{}, newAppError(http.StatusBadRequest, "unknown storage provider for entry", nil)
	}
	destProvider, ok := s.selector.Select(rawDestID)
	if !ok {
		return TransferResult{}, newAppError(http.StatusBadRequest, "unknown storage provider for destination", nil)
	}
	if entryType != models.EntryTypeFile {
		return TransferResult{}, newAppError(http.StatusBadRequest, "cross-provider folder transfer is not supported", nil)
	}

	entry, err := srcProvider.Files().GetFile(ctx, rawEntryID)
	if err != nil {
		return TransferResult{}, newAppError(http.StatusInternalServerError, "provider lookup failed", err)
	}
	content, err := srcProvider.Files().ReadContent(ctx, rawEntryID)
	if err != nil {
		return TransferResult{}, newAppError(http.StatusInternalServerError, "provider read failed", err)
	}
	defer content.Close()

	newID, err := destProvider.Files().SaveContent(ctx, rawDestID, entry.Title, entry.Size, content)
	if err != nil {
		return TransferResult{}, newAppError(http.StatusInternalServerError, "provider upload failed", err)
	}
	if err := s.verifyProviderFile(ctx, destProvider, newID, entry.Size); err != nil {
		return TransferResult{}, err
	}
	if deleteSource {
		if err := srcProvider.Files().Delete(ctx, rawEntryID); err != nil {
			return TransferResult{}, newAppError(http.StatusInternalServerError, "provider delete failed", err)
		}
	}
	return TransferResult{EntryID: newID}, nil
}

// verifyProviderFile confirms the destination copy is readable and complete.
// Sources are only ever deleted after this check passes.
func (s *transferService) verifyProviderFile(ctx context.Context, provider Provider, id string, wantSize int64) error {
	exists, err := provider.Files().Exists(ctx, id)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "provider verification failed", err)
	}
	if !exists {
		return newAppError(http.StatusInternalServerError, "provider copy not found after upload", nil)
	}
	size, err := provider.Files().Size(ctx, id)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "provider verification failed", err)
	}
	if size != wantSize {
		return newAppError(http.StatusInternalServerError,
			fmt.Sprintf("provider copy incomplete: %d of %d bytes", size, wantSize), nil)
	}
	return nil
}

// recountPending strips the recount-pending marker off a committed move.
func recountPending(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrRecountPending) {
		return true, nil
	}
	return false, err
}
