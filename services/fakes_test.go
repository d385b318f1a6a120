package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"docmeta/config"
	"docmeta/models"
	"docmeta/search"

	"gorm.io/gorm"
)

type fakeTxManager struct {
	err   error
	calls int
}

func (m *fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	if m.err != nil {
		return m.err
	}
	m.calls++
	return fn(nil)
}

type fakeLocker struct {
	err  error
	keys []string
}

func (l *fakeLocker) WithLock(_ context.Context, key string, fn func() error) error {
	if l.err != nil {
		return l.err
	}
	l.keys = append(l.keys, key)
	return fn()
}

type fakeIndexer struct {
	indexed []search.Record
	deleted []search.Record
}

func (i *fakeIndexer) IndexAsync(_ context.Context, r search.Record)  { i.indexed = append(i.indexed, r) }
func (i *fakeIndexer) DeleteAsync(_ context.Context, r search.Record) { i.deleted = append(i.deleted, r) }
func (i *fakeIndexer) TrySelectIDs(context.Context, int, string) (bool, []string) {
	return false, nil
}

type fakeFolderRepo struct {
	folders map[int64]models.Folder
	nextID  int64

	getErr        error
	createErr     error
	updateErr     error
	deleteErr     error
	addCounterErr error
	setCountsErr  error
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: map[int64]models.Folder{}, nextID: 1}
}

func (r *fakeFolderRepo) GetByID(_ context.Context, _ *gorm.DB, tenantID int, folderID int64) (models.Folder, error) {
	if r.getErr != nil {
		return models.Folder{}, r.getErr
	}
	folder, ok := r.folders[folderID]
	if !ok || folder.TenantID != tenantID {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepo) ListByIDs(_ context.Context, _ *gorm.DB, tenantID int, folderIDs []int64) ([]models.Folder, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make([]models.Folder, 0, len(folderIDs))
	for _, id := range folderIDs {
		if f, ok := r.folders[id]; ok && f.TenantID == tenantID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) ListByParent(_ context.Context, _ *gorm.DB, tenantID int, parentID int64) ([]models.Folder, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make([]models.Folder, 0)
	for _, f := range r.folders {
		if f.TenantID == tenantID && f.ParentID == parentID && f.ID != f.ParentID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFolderRepo) Create(_ context.Context, _ *gorm.DB, folder *models.Folder) error {
	if r.createErr != nil {
		return r.createErr
	}
	if folder.ID == 0 {
		for r.folders[r.nextID].ID != 0 {
			r.nextID++
		}
		folder.ID = r.nextID
		r.nextID++
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) UpdateByID(_ context.Context, _ *gorm.DB, tenantID int, folderID int64, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	folder, ok := r.folders[folderID]
	if !ok || folder.TenantID != tenantID {
		return nil
	}
	for key, value := range updates {
		switch key {
		case "parent_id":
			folder.ParentID = value.(int64)
		case "title":
			folder.Title = value.(string)
		case "modified_by":
			folder.ModifiedBy = value.(string)
		case "modified_at":
			folder.ModifiedAt = value.(time.Time)
		}
	}
	r.folders[folderID] = folder
	return nil
}

func (r *fakeFolderRepo) DeleteByIDs(_ context.Context, _ *gorm.DB, tenantID int, folderIDs []int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for _, id := range folderIDs {
		if f, ok := r.folders[id]; ok && f.TenantID == tenantID {
			delete(r.folders, id)
		}
	}
	return nil
}

func (r *fakeFolderRepo) AddCounter(_ context.Context, _ *gorm.DB, tenantID int, folderIDs []int64, delta int64) error {
	if r.addCounterErr != nil {
		return r.addCounterErr
	}
	for _, id := range folderIDs {
		if f, ok := r.folders[id]; ok && f.TenantID == tenantID {
			f.Counter += delta
			r.folders[id] = f
		}
	}
	return nil
}

func (r *fakeFolderRepo) SetCounts(_ context.Context, _ *gorm.DB, tenantID int, folderID int64, foldersCount int, filesCount int) error {
	if r.setCountsErr != nil {
		return r.setCountsErr
	}
	if f, ok := r.folders[folderID]; ok && f.TenantID == tenantID {
		f.FoldersCount = foldersCount
		f.FilesCount = filesCount
		r.folders[folderID] = f
	}
	return nil
}

type fakeTreeRepo struct {
	edges []models.TreeEdge

	insertErr error
	queryErr  error
	deleteErr error
}

func newFakeTreeRepo() *fakeTreeRepo {
	return &fakeTreeRepo{}
}

func (r *fakeTreeRepo) InsertEdges(_ context.Context, _ *gorm.DB, edges []models.TreeEdge) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.edges = append(r.edges, edges...)
	return nil
}

func (r *fakeTreeRepo) AncestorEdges(_ context.Context, _ *gorm.DB, tenantID int, folderID int64) ([]models.TreeEdge, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	out := make([]models.TreeEdge, 0)
	for _, e := range r.edges {
		if e.TenantID == tenantID && e.FolderID == folderID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (r *fakeTreeRepo) DescendantEdges(_ context.Context, _ *gorm.DB, tenantID int, folderID int64, maxLevel int) ([]models.TreeEdge, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	out := make([]models.TreeEdge, 0)
	for _, e := range r.edges {
		if e.TenantID != tenantID || e.ParentID != folderID {
			continue
		}
		if maxLevel > 0 && e.Level > maxLevel {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (r *fakeTreeRepo) SeverSubtree(_ context.Context, _ *gorm.DB, tenantID int, subtreeIDs []int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	inSubtree := make(map[int64]bool, len(subtreeIDs))
	for _, id := range subtreeIDs {
		inSubtree[id] = true
	}
	kept := r.edges[:0]
	for _, e := range r.edges {
		if e.TenantID == tenantID && inSubtree[e.FolderID] && !inSubtree[e.ParentID] {
			continue
		}
		kept = append(kept, e)
	}
	r.edges = kept
	return nil
}

func (r *fakeTreeRepo) DeleteByFolderIDs(_ context.Context, _ *gorm.DB, tenantID int, folderIDs []int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	gone := make(map[int64]bool, len(folderIDs))
	for _, id := range folderIDs {
		gone[id] = true
	}
	kept := r.edges[:0]
	for _, e := range r.edges {
		if e.TenantID == tenantID && (gone[e.FolderID] || gone[e.ParentID]) {
			continue
		}
		kept = append(kept, e)
	}
	r.edges = kept
	return nil
}

func (r *fakeTreeRepo) DescendantCount(_ context.Context, _ *gorm.DB, tenantID int, folderID int64) (int64, error) {
	if r.queryErr != nil {
		return 0, r.queryErr
	}
	var count int64
	for _, e := range r.edges {
		if e.TenantID == tenantID && e.ParentID == folderID && e.Level > 0 {
			count++
		}
	}
	return count, nil
}

type fileKey struct {
	id      int64
	version int
}

type fakeFileRepo struct {
	rows map[fileKey]models.File

	getErr    error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{rows: map[fileKey]models.File{}}
}

func (r *fakeFileRepo) MaxID(_ context.Context, _ *gorm.DB, tenantID int) (int64, error) {
	if r.getErr != nil {
		return 0, r.getErr
	}
	var maxID int64
	for _, f := range r.rows {
		if f.TenantID == tenantID && f.ID > maxID {
			maxID = f.ID
		}
	}
	return maxID, nil
}

func (r *fakeFileRepo) GetCurrent(_ context.Context, _ *gorm.DB, tenantID int, fileID int64) (models.File, error) {
	if r.getErr != nil {
		return models.File{}, r.getErr
	}
	for _, f := range r.rows {
		if f.TenantID == tenantID && f.ID == fileID && f.CurrentVersion {
			return f, nil
		}
	}
	return models.File{}, gorm.ErrRecordNotFound
}

func (r *fakeFileRepo) GetVersion(_ context.Context, _ *gorm.DB, tenantID int, fileID int64, version int) (models.File, error) {
	if r.getErr != nil {
		return models.File{}, r.getErr
	}
	f, ok := r.rows[fileKey{id: fileID, version: version}]
	if !ok || f.TenantID != tenantID {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *fakeFileRepo) ListVersions(_ context.Context, _ *gorm.DB, tenantID int, fileID int64) ([]models.File, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make([]models.File, 0)
	for _, f := range r.rows {
		if f.TenantID == tenantID && f.ID == fileID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *fakeFileRepo) MaxVersion(_ context.Context, _ *gorm.DB, tenantID int, fileID int64) (int, error) {
	if r.getErr != nil {
		return 0, r.getErr
	}
	maxVersion := 0
	for _, f := range r.rows {
		if f.TenantID == tenantID && f.ID == fileID && f.Version > maxVersion {
			maxVersion = f.Version
		}
	}
	return maxVersion, nil
}

func (r *fakeFileRepo) Create(_ context.Context, _ *gorm.DB, file *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.rows[fileKey{id: file.ID, version: file.Version}] = *file
	return nil
}

func applyFileUpdates(f *models.File, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "content_length":
			f.ContentLength = value.(int64)
		case "title":
			f.Title = value.(string)
		case "modified_by":
			f.ModifiedBy = value.(string)
		case "modified_at":
			f.ModifiedAt = value.(time.Time)
		case "current_version":
			f.CurrentVersion = value.(bool)
		case "parent_id":
			f.ParentID = value.(int64)
		case "root_id":
			f.RootID = value.(int64)
		case "root_type":
			f.RootType = value.(models.FolderType)
		case "thumb":
			f.ThumbnailStatus = value.(models.ThumbnailStatus)
		}
	}
}

func (r *fakeFileRepo) UpdateVersion(_ context.Context, _ *gorm.DB, tenantID int, fileID int64, version int, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	key := fileKey{id: fileID, version: version}
	f, ok := r.rows[key]
	if !ok || f.TenantID != tenantID {
		return nil
	}
	applyFileUpdates(&f, updates)
	r.rows[key] = f
	return nil
}

func (r *fakeFileRepo) UpdateAllVersions(_ context.Context, _ *gorm.DB, tenantID int, fileID int64, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for key, f := range r.rows {
		if f.TenantID == tenantID && f.ID == fileID {
			applyFileUpdates(&f, updates)
			r.rows[key] = f
		}
	}
	return nil
}

func (r *fakeFileRepo) SetCurrentVersion(_ context.Context, _ *gorm.DB, tenantID int, fileID int64, version int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for key, f := range r.rows {
		if f.TenantID == tenantID && f.ID == fileID {
			f.CurrentVersion = f.Version == version
			r.rows[key] = f
		}
	}
	return nil
}

func (r *fakeFileRepo) DeleteVersion(_ context.Context, _ *gorm.DB, tenantID int, fileID int64, version int) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	key := fileKey{id: fileID, version: version}
	if f, ok := r.rows[key]; ok && f.TenantID == tenantID {
		delete(r.rows, key)
	}
	return nil
}

func (r *fakeFileRepo) DeleteAllVersions(_ context.Context, _ *gorm.DB, tenantID int, fileID int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for key, f := range r.rows {
		if f.TenantID == tenantID && f.ID == fileID {
			delete(r.rows, key)
		}
	}
	return nil
}

func (r *fakeFileRepo) ListCurrentByParents(_ context.Context, _ *gorm.DB, tenantID int, parentIDs []int64) ([]models.File, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	parents := make(map[int64]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	out := make([]models.File, 0)
	for _, f := range r.rows {
		if f.TenantID == tenantID && parents[f.ParentID] && f.CurrentVersion {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFileRepo) ListByParents(_ context.Context, _ *gorm.DB, tenantID int, parentIDs []int64) ([]models.File, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	parents := make(map[int64]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	out := make([]models.File, 0)
	for _, f := range r.rows {
		if f.TenantID == tenantID && parents[f.ParentID] {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}

func (r *fakeFileRepo) DeleteByParents(_ context.Context, _ *gorm.DB, tenantID int, parentIDs []int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	parents := make(map[int64]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	for key, f := range r.rows {
		if f.TenantID == tenantID && parents[f.ParentID] {
			delete(r.rows, key)
		}
	}
	return nil
}

func (r *fakeFileRepo) CountCurrentByParents(ctx context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) (int64, error) {
	files, err := r.ListCurrentByParents(ctx, tx, tenantID, parentIDs)
	if err != nil {
		return 0, err
	}
	return int64(len(files)), nil
}

func (r *fakeFileRepo) SumCurrentSizeByParents(ctx context.Context, tx *gorm.DB, tenantID int, parentIDs []int64) (int64, error) {
	files, err := r.ListCurrentByParents(ctx, tx, tenantID, parentIDs)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, f := range files {
		sum += f.ContentLength
	}
	return sum, nil
}

func (r *fakeFileRepo) ShiftVersionGroup(_ context.Context, _ *gorm.DB, tenantID int, fileID int64, afterVersion int, delta int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for key, f := range r.rows {
		if f.TenantID == tenantID && f.ID == fileID && f.Version > afterVersion {
			f.VersionGroup += delta
			r.rows[key] = f
		}
	}
	return nil
}

type orderKey struct {
	entryID   string
	entryType models.EntryType
}

type fakeOrderRepo struct {
	orders map[orderKey]models.FileOrder

	getErr    error
	upsertErr error
	deleteErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[orderKey]models.FileOrder{}}
}

func (r *fakeOrderRepo) Get(_ context.Context, _ *gorm.DB, tenantID int, entryID string, entryType models.EntryType) (models.FileOrder, error) {
	if r.getErr != nil {
		return models.FileOrder{}, r.getErr
	}
	order, ok := r.orders[orderKey{entryID: entryID, entryType: entryType}]
	if !ok || order.TenantID != tenantID {
		return models.FileOrder{}, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) Upsert(_ context.Context, _ *gorm.DB, order *models.FileOrder) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.orders[orderKey{entryID: order.EntryID, entryType: order.EntryType}] = *order
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, _ *gorm.DB, tenantID int, entryID string, entryType models.EntryType) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	key := orderKey{entryID: entryID, entryType: entryType}
	if order, ok := r.orders[key]; ok && order.TenantID == tenantID {
		delete(r.orders, key)
	}
	return nil
}

func (r *fakeOrderRepo) DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, tenantID int, entryIDs []string, entryType models.EntryType) error {
	for _, id := range entryIDs {
		if err := r.Delete(ctx, tx, tenantID, id, entryType); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeOrderRepo) NextOrder(_ context.Context, _ *gorm.DB, tenantID int, parentFolderID int64) (int, error) {
	if r.getErr != nil {
		return 0, r.getErr
	}
	maxOrder := 0
	for _, order := range r.orders {
		if order.TenantID == tenantID && order.ParentFolderID == parentFolderID && order.Order > maxOrder {
			maxOrder = order.Order
		}
	}
	return maxOrder + 1, nil
}

type fakeTagRepo struct {
	tags      map[int64]models.Tag
	links     []models.TagLink
	nextTagID int64

	getErr    error
	createErr error
	deleteErr error
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: map[int64]models.Tag{}, nextTagID: 1}
}

func (r *fakeTagRepo) GetOrCreate(_ context.Context, _ *gorm.DB, tag *models.Tag) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.tags {
		if existing.TenantID == tag.TenantID && existing.Name == tag.Name && existing.Type == tag.Type {
			*tag = existing
			return nil
		}
	}
	tag.ID = r.nextTagID
	r.nextTagID++
	r.tags[tag.ID] = *tag
	return nil
}

func (r *fakeTagRepo) CreateLink(_ context.Context, _ *gorm.DB, link *models.TagLink) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.links {
		if existing.TenantID == link.TenantID && existing.TagID == link.TagID &&
			existing.EntryID == link.EntryID && existing.EntryType == link.EntryType {
			return nil
		}
	}
	r.links = append(r.links, *link)
	return nil
}

func (r *fakeTagRepo) TagsByEntry(_ context.Context, _ *gorm.DB, tenantID int, entryID string, entryType models.EntryType, tagType models.TagType) ([]models.Tag, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make([]models.Tag, 0)
	for _, link := range r.links {
		if link.TenantID != tenantID || link.EntryID != entryID || link.EntryType != entryType {
			continue
		}
		if tag, ok := r.tags[link.TagID]; ok && tag.Type == tagType {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (r *fakeTagRepo) DeleteLinksByEntry(_ context.Context, _ *gorm.DB, tenantID int, entryID string, entryType models.EntryType, tagType models.TagType) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.links[:0]
	for _, link := range r.links {
		tag := r.tags[link.TagID]
		if link.TenantID == tenantID && link.EntryID == entryID && link.EntryType == entryType && tag.Type == tagType {
			continue
		}
		kept = append(kept, link)
	}
	r.links = kept
	return nil
}

func (r *fakeTagRepo) DeleteLinksByEntryIDs(_ context.Context, _ *gorm.DB, tenantID int, entryIDs []string, entryType models.EntryType) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	gone := make(map[string]bool, len(entryIDs))
	for _, id := range entryIDs {
		gone[id] = true
	}
	kept := r.links[:0]
	for _, link := range r.links {
		if link.TenantID == tenantID && gone[link.EntryID] && link.EntryType == entryType {
			continue
		}
		kept = append(kept, link)
	}
	r.links = kept
	return nil
}

type fakeBunchRepo struct {
	byRightNode map[string]string

	getErr    error
	createErr error
}

func newFakeBunchRepo() *fakeBunchRepo {
	return &fakeBunchRepo{byRightNode: map[string]string{}}
}

func (r *fakeBunchRepo) GetLeftNode(_ context.Context, _ *gorm.DB, _ int, rightNode string) (string, error) {
	if r.getErr != nil {
		return "", r.getErr
	}
	leftNode, ok := r.byRightNode[rightNode]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return leftNode, nil
}

func (r *fakeBunchRepo) Create(_ context.Context, _ *gorm.DB, bunch *models.BunchObject) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byRightNode[bunch.RightNode] = bunch.LeftNode
	return nil
}

func (r *fakeBunchRepo) DeleteByLeftNodes(_ context.Context, _ *gorm.DB, _ int, leftNodes []string) error {
	for rightNode, leftNode := range r.byRightNode {
		for _, gone := range leftNodes {
			if leftNode == gone {
				delete(r.byRightNode, rightNode)
			}
		}
	}
	return nil
}

type quotaKey struct {
	ownerType models.QuotaOwnerType
	ownerID   string
}

type fakeQuotaRepo struct {
	usage map[quotaKey]int64

	getErr error
	addErr error
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{usage: map[quotaKey]int64{}}
}

func (r *fakeQuotaRepo) GetUsage(_ context.Context, _ *gorm.DB, tenantID int, ownerType models.QuotaOwnerType, ownerID string) (models.QuotaUsage, error) {
	if r.getErr != nil {
		return models.QuotaUsage{}, r.getErr
	}
	used, ok := r.usage[quotaKey{ownerType: ownerType, ownerID: ownerID}]
	if !ok {
		return models.QuotaUsage{}, gorm.ErrRecordNotFound
	}
	return models.QuotaUsage{TenantID: tenantID, OwnerType: ownerType, OwnerID: ownerID, UsedBytes: used}, nil
}

func (r *fakeQuotaRepo) AddUsage(_ context.Context, _ *gorm.DB, _ int, ownerType models.QuotaOwnerType, ownerID string, delta int64) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.usage[quotaKey{ownerType: ownerType, ownerID: ownerID}] += delta
	return nil
}

type fakeIdentityRepo struct {
	mappings map[string]models.IdentityMapping

	getErr      error
	upsertErr   error
	upsertCalls int
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{mappings: map[string]models.IdentityMapping{}}
}

func (r *fakeIdentityRepo) Get(_ context.Context, _ *gorm.DB, tenantID int, externalID string) (models.IdentityMapping, error) {
	if r.getErr != nil {
		return models.IdentityMapping{}, r.getErr
	}
	mapping, ok := r.mappings[externalID]
	if !ok || mapping.TenantID != tenantID {
		return models.IdentityMapping{}, gorm.ErrRecordNotFound
	}
	return mapping, nil
}

func (r *fakeIdentityRepo) Upsert(_ context.Context, _ *gorm.DB, mapping *models.IdentityMapping) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upsertCalls++
	if _, ok := r.mappings[mapping.ExternalID]; ok {
		return nil
	}
	r.mappings[mapping.ExternalID] = *mapping
	return nil
}

type fakeBlobStore struct {
	objects map[string][]byte

	saveErr error
	readErr error
	copyErr error
	saved   []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (b *fakeBlobStore) Save(_ context.Context, path string, r io.Reader, _ int64) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.objects[path] = data
	b.saved = append(b.saved, path)
	return nil
}

func (b *fakeBlobStore) Read(_ context.Context, path string, offset int64, length int64) (io.ReadCloser, error) {
	if b.readErr != nil {
		return nil, b.readErr
	}
	data, ok := b.objects[path]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	data = data[offset:]
	if length > 0 && length < int64(len(data)) {
		data = data[:length]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBlobStore) Delete(_ context.Context, path string) error {
	delete(b.objects, path)
	return nil
}

func (b *fakeBlobStore) DeleteDir(_ context.Context, prefix string) error {
	for path := range b.objects {
		if strings.HasPrefix(path, prefix) {
			delete(b.objects, path)
		}
	}
	return nil
}

func (b *fakeBlobStore) Copy(_ context.Context, srcPath string, dstPath string) error {
	if b.copyErr != nil {
		return b.copyErr
	}
	data, ok := b.objects[srcPath]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.objects[dstPath] = append([]byte(nil), data...)
	return nil
}

func (b *fakeBlobStore) IsFile(_ context.Context, path string) (bool, error) {
	_, ok := b.objects[path]
	return ok, nil
}

func (b *fakeBlobStore) Size(_ context.Context, path string) (int64, error) {
	data, ok := b.objects[path]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return int64(len(data)), nil
}

// seedFolder creates a folder row and its closure edges under parentID.
// parentID 0 makes a root.
func seedFolder(folders *fakeFolderRepo, tree *fakeTreeRepo, tenantID int, id int64, parentID int64, folderType models.FolderType) models.Folder {
	folder := models.Folder{
		ID:       id,
		TenantID: tenantID,
		ParentID: parentID,
		Title:    "folder",
		Type:     folderType,
		Quota:    models.QuotaDefault,
	}
	folders.folders[id] = folder
	if id >= folders.nextID {
		folders.nextID = id + 1
	}

	tree.edges = append(tree.edges, models.TreeEdge{TenantID: tenantID, FolderID: id, ParentID: id, Level: 0})
	if parentID != 0 {
		for _, e := range tree.edges {
			if e.TenantID == tenantID && e.FolderID == parentID {
				tree.edges = append(tree.edges, models.TreeEdge{
					TenantID: tenantID,
					FolderID: id,
					ParentID: e.ParentID,
					Level:    e.Level + 1,
				})
			}
		}
	}
	return folder
}

func seedFile(files *fakeFileRepo, tenantID int, id int64, parentID int64, version int, current bool, size int64, title string) models.File {
	file := models.File{
		ID:             id,
		TenantID:       tenantID,
		Version:        version,
		VersionGroup:   version,
		CurrentVersion: current,
		ParentID:       parentID,
		Title:          title,
		ContentLength:  size,
	}
	files.rows[fileKey{id: id, version: version}] = file
	return file
}

func setTestConfig() {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	config.AppConfig = cfg
}
