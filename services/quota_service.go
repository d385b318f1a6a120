package services

import (
	"context"
	"errors"
	"strconv"

	"docmeta/config"
	"docmeta/models"
	"docmeta/repositories"

	"gorm.io/gorm"
)

// QuotaService is the ledger behind every byte-affecting mutation. Checks
// run before any durable write; delta propagation keeps the denormalized
// folder counters and the per-bucket usage rows consistent afterwards.
type QuotaService interface {
	// CheckUpload enforces the tenant-wide single-write ceiling.
	CheckUpload(tenantID int, size int64) error
	// CheckDestination validates delta against the room or user bucket the
	// destination folder belongs to.
	CheckDestination(ctx context.Context, tx *gorm.DB, tenantID int, destFolderID int64, delta int64) error
	// ApplyDelta adds delta to the byte counter of the folder and every
	// ancestor. Trash chains participate only when configured to.
	ApplyDelta(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, delta int64) error
	// AddUsage books delta against the quota bucket owning the folder.
	AddUsage(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, delta int64) error
	// TransferUsage moves bytes between the buckets of two folders, the
	// compensating pair used when an entry crosses a room or user boundary.
	TransferUsage(ctx context.Context, tx *gorm.DB, tenantID int, fromFolderID int64, toFolderID int64, bytes int64) error
	// FolderUsage reports the bucket a folder is billed against.
	FolderUsage(ctx context.Context, tenantID int, folderID int64) (QuotaStatus, error)
}

// QuotaStatus is the read-side view of one quota bucket.
type QuotaStatus struct {
	Scope     string `json:"scope"`
	OwnerID   string `json:"owner_id"`
	Limit     int64  `json:"limit"`
	UsedBytes int64  `json:"used_bytes"`
}

type quotaService struct {
	quota repositories.QuotaRepository
	index treeIndex
}

func NewQuotaService(
	quota repositories.QuotaRepository,
	folders repositories.FolderRepository,
	tree repositories.TreeRepository,
	files repositories.FileRepository,
) QuotaService {
	return &quotaService{
		quota: quota,
		index: treeIndex{folders: folders, tree: tree, files: files},
	}
}

func (s *quotaService) CheckUpload(_ int, size int64) error {
	limit := config.AppConfig.Quota.MaxUploadSize
	if limit > 0 && size > limit {
		qErr := &QuotaError{Scope: "tenant", Limit: limit, Requested: size}
		return newAppErrorWithData(413, "upload size exceeds tenant limit", qErr, qErr)
	}
	return nil
}

func (s *quotaService) CheckDestination(ctx context.Context, tx *gorm.DB, tenantID int, destFolderID int64, delta int64) error {
	if delta <= 0 {
		return nil
	}

	chain, err := s.index.ancestorChain(ctx, tx, tenantID, destFolderID)
	if err != nil {
		return err
	}

	ownerType, ownerID, limit := s.bucketFor(chain)
	if limit == models.QuotaUnlimited {
		return nil
	}

	used := int64(0)
	usage, err := s.quota.GetUsage(ctx, tx, tenantID, ownerType, ownerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		used = usage.UsedBytes
	}

	if used+delta > limit {
		scope := "user"
		if ownerType == models.QuotaOwnerRoom {
			scope = "room"
		}
		qErr := &QuotaError{Scope: scope, Limit: limit, Requested: delta}
		return newAppErrorWithData(413, scope+" quota exceeded", qErr, qErr)
	}
	return nil
}

func (s *quotaService) ApplyDelta(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, delta int64) error {
	if delta == 0 {
		return nil
	}

	chain, err := s.index.ancestorChain(ctx, tx, tenantID, folderID)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return nil
	}

	if chain[0].Type == models.FolderTrash && !config.AppConfig.Quota.TrashCountsTowardQuota {
		return nil
	}

	ids := make([]int64, 0, len(chain))
	for _, f := range chain {
		ids = append(ids, f.ID)
	}
	return s.index.folders.AddCounter(ctx, tx, tenantID, ids, delta)
}

func (s *quotaService) AddUsage(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, delta int64) error {
	if delta == 0 {
		return nil
	}

	chain, err := s.index.ancestorChain(ctx, tx, tenantID, folderID)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return nil
	}
	if chain[0].Type == models.FolderTrash && !config.AppConfig.Quota.TrashCountsTowardQuota {
		return nil
	}

	ownerType, ownerID, _ := s.bucketFor(chain)
	return s.quota.AddUsage(ctx, tx, tenantID, ownerType, ownerID, delta)
}

func (s *quotaService) TransferUsage(ctx context.Context, tx *gorm.DB, tenantID int, fromFolderID int64, toFolderID int64, bytes int64) error {
	if bytes == 0 {
		return nil
	}
	if err := s.AddUsage(ctx, tx, tenantID, fromFolderID, -bytes); err != nil {
		return err
	}
	return s.AddUsage(ctx, tx, tenantID, toFolderID, bytes)
}

func (s *quotaService) FolderUsage(ctx context.Context, tenantID int, folderID int64) (QuotaStatus, error) {
	chain, err := s.index.ancestorChain(ctx, nil, tenantID, folderID)
	if err != nil {
		return QuotaStatus{}, err
	}
	if len(chain) == 0 {
		return QuotaStatus{}, newAppError(404, "folder not found", nil)
	}

	ownerType, ownerID, limit := s.bucketFor(chain)
	status := QuotaStatus{OwnerID: ownerID, Limit: limit}
	switch ownerType {
	case models.QuotaOwnerRoom:
		status.Scope = "room"
	case models.QuotaOwnerUser:
		status.Scope = "user"
	default:
		status.Scope = "tenant"
	}

	usage, err := s.quota.GetUsage(ctx, nil, tenantID, ownerType, ownerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return QuotaStatus{}, err
	}
	if err == nil {
		status.UsedBytes = usage.UsedBytes
	}
	return status, nil
}

// bucketFor picks the quota bucket of a chain (ordered root first): the
// nearest enclosing room wins, then a personal root, then the tenant bucket.
func (s *quotaService) bucketFor(chain []models.Folder) (models.QuotaOwnerType, string, int64) {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Type.IsRoom() {
			limit := resolveLimit(chain[i].Quota, config.AppConfig.Quota.DefaultRoomQuota)
			return models.QuotaOwnerRoom, strconv.FormatInt(chain[i].ID, 10), limit
		}
	}

	if len(chain) > 0 && chain[0].Type == models.FolderUser {
		limit := resolveLimit(models.QuotaDefault, config.AppConfig.Quota.DefaultUserQuota)
		return models.QuotaOwnerUser, chain[0].CreatedBy, limit
	}

	limit := models.QuotaUnlimited
	if config.AppConfig.Quota.TenantQuota > 0 {
		limit = config.AppConfig.Quota.TenantQuota
	}
	return models.QuotaOwnerTenant, "", limit
}

// resolveLimit collapses the sentinel values: an explicit limit stands, the
// inherit sentinel falls back to the configured default, and a missing
// default means unlimited.
func resolveLimit(quota int64, configured int64) int64 {
	switch {
	case quota >= 0:
		return quota
	case quota == models.QuotaUnlimited:
		return models.QuotaUnlimited
	case configured > 0:
		return configured
	default:
		return models.QuotaUnlimited
	}
}
