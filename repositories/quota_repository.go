package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormQuotaRepository struct {
	db *gorm.DB
}

func NewGormQuotaRepository(db *gorm.DB) *GormQuotaRepository {
	return &GormQuotaRepository{db: db}
}

func (r *GormQuotaRepository) GetUsage(_ context.Context, tx *gorm.DB, tenantID int, ownerType models.QuotaOwnerType, ownerID string) (models.QuotaUsage, error) {
	var usage models.QuotaUsage
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND owner_type = ? AND owner_id = ?", tenantID, ownerType, ownerID).
		First(&usage).Error
	return usage, err
}

func (r *GormQuotaRepository) AddUsage(_ context.Context, tx *gorm.DB, tenantID int, ownerType models.QuotaOwnerType, ownerID string, delta int64) error {
	if delta == 0 {
		return nil
	}
	return useTx(r.db, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "owner_type"}, {Name: "owner_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"used_bytes": gorm.Expr("used_bytes + ?", delta)}),
		}).
		Create(&models.QuotaUsage{
			TenantID:  tenantID,
			OwnerType: ownerType,
			OwnerID:   ownerID,
			UsedBytes: delta,
		}).Error
}
