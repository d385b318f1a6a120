package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
)

// TxManager runs fn inside a database transaction. The whole closure may be
// re-executed on transient store failures, so fn must tolerate safe re-runs
// up to the final commit.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type FolderRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) (models.Folder, error)
	ListByIDs(ctx context.Context, tx *gorm.DB, tenantID int, folderIDs []int64) ([]models.Folder, error)
	ListByParent(ctx context.Context, tx *gorm.DB, tenantID int, parentID int64) ([]models.Folder, error)
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	UpdateByID(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, updates map[string]interface{}) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, tenantID int, folderIDs []int64) error
	AddCounter(ctx context.Context, tx *gorm.DB, tenantID int, folderIDs []int64, delta int64) error
	SetCounts(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, foldersCount int, filesCount int) error
}

type TreeRepository interface {
	InsertEdges(ctx context.Context, tx *gorm.DB, edges []models.TreeEdge) error
	// AncestorEdges returns the edges of folderID ordered by ascending level
	// (self first, tenant root last).
	AncestorEdges(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) ([]models.TreeEdge, error)
	// DescendantEdges returns edges whose ancestor is folderID, self included.
	// maxLevel <= 0 means unbounded.
	DescendantEdges(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, maxLevel int) ([]models.TreeEdge, error)
	// SeverSubtree deletes every edge whose descendant is inside the subtree
	// and whose ancestor is outside it.
	SeverSubtree(ctx context.Context, tx *gorm.DB, tenantID int, subtreeIDs []int64) error
	DeleteByFolderIDs(ctx context.Context, tx *gorm.DB, tenantID int, folderIDs []int64) error
	// DescendantCount counts strict descendants (level > 0) of folderID.
	DescendantCount(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) (int64, error)
}

type FileRepository interface {
	MaxID(ctx context.Context, tx *gorm.DB, tenantID int) (int64, error)
	GetCurrent(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64) (models.File, error)
	GetVersion(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64, version int) (models.File, error)
	ListVersions(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64) ([]models.File, error)
	MaxVersion(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64) (int, error)
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	UpdateVersion(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64, version int, updates map[string]interface{}) error
	UpdateAllVersions(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64, updates map[string]interface{}) error
	SetCurrentVersion(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64, version int) error
	DeleteVersion(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64, version int) error
	DeleteAllVersions(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64) error
	ListCurrentByParents(ctx context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) ([]models.File, error)
	ListByParents(ctx context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) ([]models.File, error)
	DeleteByParents(ctx context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) error
	CountCurrentByParents(ctx context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) (int64, error)
	SumCurrentSizeByParents(ctx context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) (int64, error)
	// ShiftVersionGroup adds delta to the version group of every row with
	// version strictly greater than afterVersion.
	ShiftVersionGroup(ctx context.Context, tx *gorm.DB, tenantID int, fileID int64, afterVersion int, delta int) error
}

type IdentityRepository interface {
	Get(ctx context.Context, tx *gorm.DB, tenantID int, externalID string) (models.IdentityMapping, error)
	// Upsert is idempotent: an existing row is left untouched.
	Upsert(ctx context.Context, tx *gorm.DB, mapping *models.IdentityMapping) error
}

type OrderRepository interface {
	Get(ctx context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType) (models.FileOrder, error)
	Upsert(ctx context.Context, tx *gorm.DB, order *models.FileOrder) error
	Delete(ctx context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType) error
	DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, tenantID int, entryIDs []string, entryType models.EntryType) error
	NextOrder(ctx context.Context, tx *gorm.DB, tenantID int, parentFolderID int64) (int, error)
}

type TagRepository interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, tag *models.Tag) error
	CreateLink(ctx context.Context, tx *gorm.DB, link *models.TagLink) error
	// TagsByEntry returns the tags of the given type linked to the entry.
	TagsByEntry(ctx context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType, tagType models.TagType) ([]models.Tag, error)
	DeleteLinksByEntry(ctx context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType, tagType models.TagType) error
	DeleteLinksByEntryIDs(ctx context.Context, tx *gorm.DB, tenantID int, entryIDs []string, entryType models.EntryType) error
}

type BunchRepository interface {
	GetLeftNode(ctx context.Context, tx *gorm.DB, tenantID int, rightNode string) (string, error)
	Create(ctx context.Context, tx *gorm.DB, bunch *models.BunchObject) error
	DeleteByLeftNodes(ctx context.Context, tx *gorm.DB, tenantID int, leftNodes []string) error
}

type QuotaRepository interface {
	GetUsage(ctx context.Context, tx *gorm.DB, tenantID int, ownerType models.QuotaOwnerType, ownerID string) (models.QuotaUsage, error)
	AddUsage(ctx context.Context, tx *gorm.DB, tenantID int, ownerType models.QuotaOwnerType, ownerID string, delta int64) error
}

type Container struct {
	TxManager  TxManager
	Folders    FolderRepository
	Tree       TreeRepository
	Files      FileRepository
	Identity   IdentityRepository
	Orders     OrderRepository
	Tags       TagRepository
	Bunch      BunchRepository
	Quota      QuotaRepository
}
