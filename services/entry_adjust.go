package services

import (
	"context"
	"strconv"
	"time"

	"docmeta/models"
	"docmeta/repositories"

	"gorm.io/gorm"
)

// entryAdjuster carries the tag and custom-order bookkeeping shared by
// folder and file relocation.
type entryAdjuster struct {
	orders repositories.OrderRepository
	tags   repositories.TagRepository
	index  treeIndex
}

// onMove applies the trash/origin and custom-order rules when an entry moves
// from oldParentID to newParentID.
func (a entryAdjuster) onMove(ctx context.Context, tx *gorm.DB, tenantID int, actor string, entryID string, entryType models.EntryType, oldParentID int64, newParentID int64) error {
	oldRoot, err := a.index.rootOf(ctx, tx, tenantID, oldParentID)
	if err != nil {
		return err
	}
	newRoot, err := a.index.rootOf(ctx, tx, tenantID, newParentID)
	if err != nil {
		return err
	}

	switch {
	case newRoot.Type == models.FolderTrash:
		// Trashed entries lose their custom order and gain an origin tag so
		// restore knows where they came from.
		if err := a.orders.Delete(ctx, tx, tenantID, entryID, entryType); err != nil {
			return err
		}
		if err := a.saveTag(ctx, tx, tenantID, actor, entryID, entryType, models.TagOrigin, strconv.FormatInt(oldParentID, 10)); err != nil {
			return err
		}
		room, err := a.index.roomOf(ctx, tx, tenantID, oldParentID)
		if err != nil {
			return err
		}
		if room != nil {
			return a.saveTag(ctx, tx, tenantID, actor, entryID, entryType, models.TagRoomOrigin, strconv.FormatInt(room.ID, 10))
		}
	case oldRoot.Type == models.FolderTrash:
		// Restored: drop the origin bookkeeping.
		if err := a.tags.DeleteLinksByEntry(ctx, tx, tenantID, entryID, entryType, models.TagOrigin); err != nil {
			return err
		}
		if err := a.tags.DeleteLinksByEntry(ctx, tx, tenantID, entryID, entryType, models.TagRoomOrigin); err != nil {
			return err
		}
		return a.initCustomOrder(ctx, tx, tenantID, entryID, entryType, newParentID)
	default:
		if err := a.orders.Delete(ctx, tx, tenantID, entryID, entryType); err != nil {
			return err
		}
		return a.initCustomOrder(ctx, tx, tenantID, entryID, entryType, newParentID)
	}
	return nil
}

func (a entryAdjuster) saveTag(ctx context.Context, tx *gorm.DB, tenantID int, actor string, entryID string, entryType models.EntryType, tagType models.TagType, name string) error {
	tag := models.Tag{
		TenantID: tenantID,
		Name:     name,
		Owner:    actor,
		Type:     tagType,
	}
	if err := a.tags.GetOrCreate(ctx, tx, &tag); err != nil {
		return err
	}
	return a.tags.CreateLink(ctx, tx, &models.TagLink{
		TenantID:  tenantID,
		TagID:     tag.ID,
		EntryID:   entryID,
		EntryType: entryType,
		CreatedBy: actor,
		CreatedAt: time.Now(),
	})
}

// initCustomOrder assigns the next order slot when the destination sits in a
// room with indexing enabled; otherwise custom ordering is not maintained.
func (a entryAdjuster) initCustomOrder(ctx context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType, parentID int64) error {
	room, err := a.index.roomOf(ctx, tx, tenantID, parentID)
	if err != nil {
		return err
	}
	if room == nil || !room.IndexingOn {
		return nil
	}

	next, err := a.orders.NextOrder(ctx, tx, tenantID, parentID)
	if err != nil {
		return err
	}
	return a.orders.Upsert(ctx, tx, &models.FileOrder{
		TenantID:       tenantID,
		EntryID:        entryID,
		EntryType:      entryType,
		ParentFolderID: parentID,
		Order:          next,
	})
}

// originOf reads the origin tag of a trashed entry, 0 when absent.
func (a entryAdjuster) originOf(ctx context.Context, tx *gorm.DB, tenantID int, entryID string, entryType models.EntryType) (int64, error) {
	tags, err := a.tags.TagsByEntry(ctx, tx, tenantID, entryID, entryType, models.TagOrigin)
	if err != nil {
		return 0, err
	}
	if len(tags) == 0 {
		return 0, nil
	}
	return strconv.ParseInt(tags[0].Name, 10, 64)
}
