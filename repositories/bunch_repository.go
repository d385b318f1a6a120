package repositories

import (
	"context"

	"docmeta/models"

	"gorm.io/gorm"
)

type GormBunchRepository struct {
	db *gorm.DB
}

func NewGormBunchRepository(db *gorm.DB) *GormBunchRepository {
	return &GormBunchRepository{db: db}
}

func (r *GormBunchRepository) GetLeftNode(_ context.Context, tx *gorm.DB, tenantID int, rightNode string) (string, error) {
	var bunch models.BunchObject
	err := useTx(r.db, tx).
		Where("tenant_id = ? AND right_node = ?", tenantID, rightNode).
		First(&bunch).Error
	if err != nil {
		return "", err
	}
	return bunch.LeftNode, nil
}

func (r *GormBunchRepository) Create(_ context.Context, tx *gorm.DB, bunch *models.BunchObject) error {
	return useTx(r.db, tx).Create(bunch).Error
}

func (r *GormBunchRepository) DeleteByLeftNodes(_ context.Context, tx *gorm.DB, tenantID int, leftNodes []string) error {
	if len(leftNodes) == 0 {
		return nil
	}
	return useTx(r.db, tx).
		Where("tenant_id = ? AND left_node IN ?", tenantID, leftNodes).
		Delete(&models.BunchObject{}).Error
}
