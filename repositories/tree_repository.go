package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
)

type GormTreeRepository struct {
	db *gorm.DB
}

func NewGormTreeRepository(db *gorm.DB) *GormTreeRepository {
	return &GormTreeRepository{db: db}
}

func (r *GormTreeRepository) InsertEdges(_ context.Context, tx *gorm.DB, edges []models.TreeEdge) error {
	if len(edges) == 0 {
		return nil
	}
	return useTx(r.db, tx).Create(&edges).Error
}

func (r *GormTreeRepository) AncestorEdges(_ context.Context, tx *gorm.DB, tenantID int, folderID int64) ([]models.TreeEdge, error) {
	var edges []models.TreeEdge
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND folder_id = ?", tenantID, folderID).
		Order("level ASC").
		Find(&edges).Error
	return edges, err
}

func (r *GormTreeRepository) DescendantEdges(_ context.Context, tx *gorm.DB, tenantID int, folderID int64, maxLevel int) ([]models.TreeEdge, error) {
	db := useTx(r.db, tx).Where("tenant_id = ? AND parent_id = ?", tenantID, folderID)
	if maxLevel > 0 {
		db = db.Where("level <= ?", maxLevel)
	}
	var edges []models.TreeEdge
	err := db.Order("level ASC").Find(&edges).Error
	return edges, err
}

func (r *GormTreeRepository) SeverSubtree(_ context.Context, tx *gorm.DB, tenantID int, subtreeIDs []int64) error {
	if len(subtreeIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).
		Where("tenant_id = ? AND folder_id IN ? AND parent_id NOT IN ?", tenantID, subtreeIDs, subtreeIDs).
		Delete(&models.TreeEdge{}).Error
}

func (r *GormTreeRepository) DeleteByFolderIDs(_ context.Context, tx *gorm.DB, tenantID int, folderIDs []int64) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).
		Where("tenant_id = ? AND (folder_id IN ? OR parent_id IN ?)", tenantID, folderIDs, folderIDs).
		Delete(&models.TreeEdge{}).Error
}

func (r *GormTreeRepository) DescendantCount(_ context.Context, tx *gorm.DB, tenantID int, folderID int64) (int64, error) {
	var count int64
	err := useTx(r.db, tx).Model(&models.TreeEdge{}).
		Where("tenant_id = ? AND parent_id = ? AND level > 0", tenantID, folderID).
		Count(&count).Error
	return count, err
}
