package models

import "time"

// FolderType enumerates the structural role of a folder. Values are stable:
// they are persisted and must never be renumbered.
type FolderType int

const (
	FolderDefault      FolderType = 0
	FolderCommon       FolderType = 1
	FolderBunch        FolderType = 2
	FolderTrash        FolderType = 3
	FolderUser         FolderType = 5
	FolderShare        FolderType = 6
	FolderRecent       FolderType = 11
	FolderFavorites    FolderType = 10
	FolderTemplates    FolderType = 12
	FolderPrivacy      FolderType = 13
	FolderVirtualRooms FolderType = 14
	FolderArchive      FolderType = 20

	FolderFillingFormsRoom FolderType = 25
	FolderEditingRoom      FolderType = 26
	FolderReviewRoom       FolderType = 27
	FolderReadOnlyRoom     FolderType = 28
	FolderCustomRoom       FolderType = 29
	FolderPublicRoom       FolderType = 30
)

// IsRoom reports whether the type is one of the room variants. Rooms are
// quota and sharing boundaries with their own settings.
func (t FolderType) IsRoom() bool {
	return t >= FolderFillingFormsRoom && t <= FolderPublicRoom
}

// IsMovable reports whether folders of this type may be re-parented or
// trashed. System folders (trash, share, recent, ...) never move.
func (t FolderType) IsMovable() bool {
	return t == FolderDefault || t.IsRoom()
}

type Folder struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int        `gorm:"not null;index:idx_folder_tenant_parent" json:"tenant_id"`
	ParentID   int64      `gorm:"not null;index:idx_folder_tenant_parent" json:"parent_id"`
	Title      string     `gorm:"type:varchar(400);not null" json:"title"`
	Type       FolderType `gorm:"not null;default:0" json:"type"`
	CreatedBy  string     `gorm:"type:varchar(38)" json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedBy string     `gorm:"type:varchar(38)" json:"modified_by"`
	ModifiedAt time.Time  `json:"modified_at"`

	// Denormalized counters maintained by recount and delta propagation.
	FoldersCount int   `gorm:"not null;default:0" json:"folders_count"`
	FilesCount   int   `gorm:"not null;default:0" json:"files_count"`
	Counter      int64 `gorm:"not null;default:0" json:"counter"`

	// Room settings; meaningful only when Type.IsRoom().
	Private    bool   `gorm:"not null;default:false" json:"private"`
	HasLogo    bool   `gorm:"not null;default:false" json:"has_logo"`
	Color      string `gorm:"type:varchar(7)" json:"color"`
	IndexingOn bool   `gorm:"not null;default:false" json:"indexing_on"`
	Quota      int64  `gorm:"not null;default:-2" json:"quota"`
	Watermark  bool   `gorm:"not null;default:false" json:"watermark"`
	// Lifetime is a retention policy in days, 0 = keep forever.
	Lifetime int `gorm:"not null;default:0" json:"lifetime"`
}

func (Folder) TableName() string {
	return "folders"
}
