package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Get(_ context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType) (models.FileOrder, error) {
	var order models.FileOrder
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND entry_id = ? AND entry_type = ?", tenantID, entryID, entryType).
		First(&order).Error
	return order, err
}

func (r *GormOrderRepository) Upsert(_ context.Context, tx *gorm.DB, order *models.FileOrder) error {
	return useTx(r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "entry_id"}, {Name: "entry_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"parent_folder_id", "sort_order"}),
		}).
		Create(order).Error
}

func (r *GormOrderRepository) Delete(_ context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType) error {
	return useTx(r.db, tx).
		Where("tenant_id = ? AND entry_id = ? AND entry_type = ?", tenantID, entryID, entryType).
		Delete(&models.FileOrder{}).Error
}

func (r *GormOrderRepository) DeleteByEntryIDs(_ context.Context, tx *gorm.DB, tenantID int, entryIDs []string, entryType models.EntryType) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).
		Where("tenant_id = ? AND entry_id IN ? AND entry_type = ?", tenantID, entryIDs, entryType).
		Delete(&models.FileOrder{}).Error
}

func (r *GormOrderRepository) NextOrder(_ context.Context, tx *gorm.DB, tenantID int, parentFolderID int64) (int, error) {
	var maxOrder int
	err := useTx(r.db, tx).Model(&models.FileOrder{}).
		Where("tenant_id = ? AND parent_folder_id = ?", tenantID, parentFolderID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error
	return maxOrder + 1, err
}
