package services

import (
	"context"

	"docmeta/models"
	"docmeta/repositories"

	"gorm.io/gorm"
)

// treeIndex bundles the closure-table reads and maintenance shared by the
// folder, file, quota and transfer services.
type treeIndex struct {
	folders repositories.FolderRepository
	tree    repositories.TreeRepository
	files   repositories.FileRepository
}

// ancestorIDs returns the folder's ancestor chain, self first, tenant root
// last.
func (t treeIndex) ancestorIDs(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) ([]int64, error) {
	edges, err := t.tree.AncestorEdges(ctx, tx, tenantID, folderID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ParentID)
	}
	return ids, nil
}

func (t treeIndex) descendantIDs(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64, maxLevel int) ([]int64, error) {
	edges, err := t.tree.DescendantEdges(ctx, tx, tenantID, folderID, maxLevel)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FolderID)
	}
	return ids, nil
}

// ancestorChain loads the folders of the ancestor chain ordered root first,
// self last.
func (t treeIndex) ancestorChain(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) ([]models.Folder, error) {
	ids, err := t.ancestorIDs(ctx, tx, tenantID, folderID)
	if err != nil {
		return nil, err
	}
	folders, err := t.folders.ListByIDs(ctx, tx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	ordered := make([]models.Folder, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if f, ok := byID[ids[i]]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

// rootOf returns the last folder of the ancestor chain.
func (t treeIndex) rootOf(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) (models.Folder, error) {
	chain, err := t.ancestorChain(ctx, tx, tenantID, folderID)
	if err != nil {
		return models.Folder{}, err
	}
	if len(chain) == 0 {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return chain[0], nil
}

// roomOf returns the nearest room folder in the ancestor chain, nil when the
// entry is outside any room.
func (t treeIndex) roomOf(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) (*models.Folder, error) {
	chain, err := t.ancestorChain(ctx, tx, tenantID, folderID)
	if err != nil {
		return nil, err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Type.IsRoom() {
			room := chain[i]
			return &room, nil
		}
	}
	return nil, nil
}

// attach inserts the closure edges of a freshly created folder: the level-0
// self loop plus one edge per ancestor of the parent, shifted one level.
func (t treeIndex) attach(ctx context.Context, tx *gorm.DB, folder *models.Folder) error {
	edges := []models.TreeEdge{{
		TenantID: folder.TenantID,
		FolderID: folder.ID,
		ParentID: folder.ID,
		Level:    0,
	}}

	if folder.ParentID != 0 {
		parentEdges, err := t.tree.AncestorEdges(ctx, tx, folder.TenantID, folder.ParentID)
		if err != nil {
			return err
		}
		for _, e := range parentEdges {
			edges = append(edges, models.TreeEdge{
				TenantID: folder.TenantID,
				FolderID: folder.ID,
				ParentID: e.ParentID,
				Level:    e.Level + 1,
			})
		}
	}

	return t.tree.InsertEdges(ctx, tx, edges)
}

// recount recomputes the denormalized folder and file counters of a single
// folder from the closure table. Idempotent: it sets absolute values instead
// of incrementing.
func (t treeIndex) recount(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) error {
	foldersCount, err := t.tree.DescendantCount(ctx, tx, tenantID, folderID)
	if err != nil {
		return err
	}

	descendants, err := t.descendantIDs(ctx, tx, tenantID, folderID, 0)
	if err != nil {
		return err
	}
	filesCount, err := t.files.CountCurrentByParents(ctx, tx, tenantID, descendants)
	if err != nil {
		return err
	}

	return t.folders.SetCounts(ctx, tx, tenantID, folderID, int(foldersCount), int(filesCount))
}

// recountChain recounts the folder and every ancestor above it.
func (t treeIndex) recountChain(ctx context.Context, tx *gorm.DB, tenantID int, folderID int64) error {
	ids, err := t.ancestorIDs(ctx, tx, tenantID, folderID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := t.recount(ctx, tx, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}
