package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) MaxID(_ context.Context, tx *gorm.DB, tenantID int) (int64, error) {
	var maxID int64
	err := useTx(r.db, tx).Model(&models.File{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

func (r *GormFileRepository) GetCurrent(_ context.Context, tx *gorm.DB, tenantID int, fileID int64) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND id = ? AND current_version = ?", tenantID, fileID, true).
		First(&file).Error
	return file, err
}

func (r *GormFileRepository) GetVersion(_ context.Context, tx *gorm.DB, tenantID int, fileID int64, version int) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND id = ? AND version = ?", tenantID, fileID, version).
		First(&file).Error
	return file, err
}

func (r *GormFileRepository) ListVersions(_ context.Context, tx *gorm.DB, tenantID int, fileID int64) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND id = ?", tenantID, fileID).
		Order("version DESC").
		Find(&files).Error
	return files, err
}

func (r *GormFileRepository) MaxVersion(_ context.Context, tx *gorm.DB, tenantID int, fileID int64) (int, error) {
	var maxVersion int
	err := useTx(r.db, tx).Model(&models.File{}).
		Where("tenant_id = ? AND id = ?", tenantID, fileID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	return maxVersion, err
}

func (r *GormFileRepository) Create(_ context.Context, tx *gorm.DB, file *models.File) error {
	return useTx(r.db, tx).Create(file).Error
}

func (r *GormFileRepository) UpdateVersion(_ context.Context, tx *gorm.DB, tenantID int, fileID int64, version int, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.File{}).
		Where("tenant_id = ? AND id = ? AND version = ?", tenantID, fileID, version).
		Updates(updates).Error
}

func (r *GormFileRepository) UpdateAllVersions(_ context.Context, tx *gorm.DB, tenantID int, fileID int64, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.File{}).
		Where("tenant_id = ? AND id = ?", tenantID, fileID).
		Updates(updates).Error
}

func (r *GormFileRepository) SetCurrentVersion(_ context.Context, tx *gorm.DB, tenantID int, fileID int64, version int) error {
	db := useTx(r.db, tx)
	err := db.Model(&models.File{}).
		Where("tenant_id = ? AND id = ? AND current_version = ?", tenantID, fileID, true).
		Update("current_version", false).Error
	if err != nil {
		return err
	}
	return db.Model(&models.File{}).
		Where("tenant_id = ? AND id = ? AND version = ?", tenantID, fileID, version).
		Update("current_version", true).Error
}

func (r *GormFileRepository) DeleteVersion(_ context.Context, tx *gorm.DB, tenantID int, fileID int64, version int) error {
	return useTx(r.db, tx).
		Where("tenant_id = ? AND id = ? AND version = ?", tenantID, fileID, version).
		Delete(&models.File{}).Error
}

func (r *GormFileRepository) DeleteAllVersions(_ context.Context, tx *gorm.DB, tenantID int, fileID int64) error {
	return useTx(r.db, tx).
		Where("tenant_id = ? AND id = ?", tenantID, fileID).
		Delete(&models.File{}).Error
}

func (r *GormFileRepository) ListCurrentByParents(_ context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) ([]models.File, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var files []models.File
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND parent_id IN ? AND current_version = ?", tenantID, parentIDs, true).
		Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListByParents(_ context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) ([]models.File, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var files []models.File
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND parent_id IN ?", tenantID, parentIDs).
		Find(&files).Error
	return files, err
}

func (r *GormFileRepository) DeleteByParents(_ context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) error {
	if len(parentIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).
		Where("tenant_id = ? AND parent_id IN ?", tenantID, parentIDs).
		Delete(&models.File{}).Error
}

func (r *GormFileRepository) CountCurrentByParents(_ context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) (int64, error) {
	if len(parentIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := useTx(r.db, tx).Model(&models.File{}).
		Where("tenant_id = ? AND parent_id IN ? AND current_version = ?", tenantID, parentIDs, true).
		Count(&count).Error
	return count, err
}

func (r *GormFileRepository) SumCurrentSizeByParents(_ context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) (int64, error) {
	if len(parentIDs) == 0 {
		return 0, nil
	}
	var sum int64
	err := useTx(r.db, tx).Model(&models.File{}).
		Where("tenant_id = ? AND parent_id IN ? AND current_version = ?", tenantID, parentIDs, true).
		Select("COALESCE(SUM(content_length), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *GormFileRepository) ShiftVersionGroup(_ context.Context, tx *gorm.DB, tenantID int, fileID int64, afterVersion int, delta int) error {
	return useTx(r.db, tx).Model(&models.File{}).
		Where("tenant_id = ? AND id = ? AND version > ?", tenantID, fileID, afterVersion).
		Update("version_group", gorm.Expr("version_group + ?", delta)).Error
}
