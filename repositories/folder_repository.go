package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
)

type GormFolderRepository struct {
	db *gorm.DB
}

func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

func (r *GormFolderRepository) GetByID(_ context.Context, tx *gorm.DB, tenantID int, folderID int64) (models.Folder, error) {
	var folder models.Folder
	err := useTx(r.db, tx).Where("tenant_id = ? AND id = ?", tenantID, folderID).First(&folder).Error
	return folder, err
}

func (r *GormFolderRepository) ListByIDs(_ context.Context, tx *gorm.DB, tenantID int, folderIDs []int64) ([]models.Folder, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	var folders []models.Folder
	err := useTx(r.db, tx).Where("tenant_id = ? AND id IN ?", tenantID, folderIDs).Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) ListByParent(_ context.Context, tx *gorm.DB, tenantID int, parentID int64) ([]models.Folder, error) {
	var folders []models.Folder
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND parent_id = ? AND id <> parent_id", tenantID, parentID).
		Order("title ASC").
		Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) Create(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return useTx(r.db, tx).Create(folder).Error
}

func (r *GormFolderRepository) UpdateByID(_ context.Context, tx *gorm.DB, tenantID int, folderID int64, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Folder{}).
		Where("tenant_id = ? AND id = ?", tenantID, folderID).
		Updates(updates).Error
}

func (r *GormFolderRepository) DeleteByIDs(_ context.Context, tx *gorm.DB, tenantID int, folderIDs []int64) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).Where("tenant_id = ? AND id IN ?", tenantID, folderIDs).Delete(&models.Folder{}).Error
}

func (r *GormFolderRepository) AddCounter(_ context.Context, tx *gorm.DB, tenantID int, folderIDs []int64, delta int64) error {
	if len(folderIDs) == 0 || delta == 0 {
		return nil
	}
	return useTx(r.db, tx).Model(&models.Folder{}).
		Where("tenant_id = ? AND id IN ?", tenantID, folderIDs).
		Update("counter", gorm.Expr("counter + ?", delta)).Error
}

func (r *GormFolderRepository) SetCounts(_ context.Context, tx *gorm.DB, tenantID int, folderID int64, foldersCount int, filesCount int) error {
	return useTx(r.db, tx).Model(&models.Folder{}).
		Where("tenant_id = ? AND id = ?", tenantID, folderID).
		Updates(map[string]interface{}{"folders_count": foldersCount, "files_count": filesCount}).Error
}
