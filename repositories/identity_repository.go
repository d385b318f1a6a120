package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormIdentityRepository struct {
	db *gorm.DB
}

func NewGormIdentityRepository(db *gorm.DB) *GormIdentityRepository {
	return &GormIdentityRepository{db: db}
}

func (r *GormIdentityRepository) Get(_ context.Context, tx *gorm.DB, tenantID int, externalID string) (models.IdentityMapping, error) {
	var mapping models.IdentityMapping
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&mapping).Error
	return mapping, err
}

func (r *GormIdentityRepository) Upsert(_ context.Context, tx *gorm.DB, mapping *models.IdentityMapping) error {
	return useTx(r.db, tx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(mapping).Error
}
