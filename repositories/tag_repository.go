package repositories

import (
	"context"
	"errors"

	"docmeta/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormTagRepository struct {
	db *gorm.DB
}

func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) GetOrCreate(_ context.Context, tx *gorm.DB, tag *models.Tag) error {
	db := useTx(r.db, tx)
	var existing models.Tag
	err := db.
		Where("tenant_id = ? AND name = ? AND type = ?", tag.TenantID, tag.Name, tag.Type).
		First(&existing).Error
	if err == nil {
		*tag = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(tag).Error
}

func (r *GormTagRepository) CreateLink(_ context.Context, tx *gorm.DB, link *models.TagLink) error {
	return useTx(r.db, tx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
}

func (r *GormTagRepository) TagsByEntry(_ context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType, tagType models.TagType) ([]models.Tag, error) {
	var tags []models.Tag
	err := useTx(r.db, tx).Model(&models.Tag{}).
		Joins("JOIN tag_links ON tag_links.tag_id = tags.id AND tag_links.tenant_id = tags.tenant_id").
		Where("tags.tenant_id = ? AND tag_links.entry_id = ? AND tag_links.entry_type = ? AND tags.type = ?",
			tenantID, entryID, entryType, tagType).
		Find(&tags).Error
	return tags, err
}

func (r *GormTagRepository) DeleteLinksByEntry(_ context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType, tagType models.TagType) error {
	return useTx(r.db, tx).
		Where("tenant_id = ? AND entry_id = ? AND entry_type = ? AND tag_id IN (?)",
			tenantID, entryID, entryType,
			useTx(r.db, tx).Model(&models.Tag{}).Select("id").Where("tenant_id = ? AND type = ?", tenantID, tagType)).
		Delete(&models.TagLink{}).Error
}

func (r *GormTagRepository) DeleteLinksByEntryIDs(_ context.Context, tx *gorm.DB, tenantID int, entryIDs []string, entryType models.EntryType) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).
		Where("tenant_id = ? AND entry_id IN ? AND entry_type = ?", tenantID, entryIDs, entryType).
		Delete(&models.TagLink{}).Error
}
