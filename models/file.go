package models

import "time"

// ForcesaveType records why a version row was written by an editor autosave.
type ForcesaveType int

const (
	ForcesaveNone ForcesaveType = iota
	ForcesaveDraft
	ForcesaveUser
	ForcesaveTimer
)

type ThumbnailStatus int

const (
	ThumbnailWaiting ThumbnailStatus = iota
	ThumbnailCreated
	ThumbnailError
	ThumbnailNotRequired
)

// File is one version row of a logical file. All rows sharing (TenantID, ID)
// form the version chain; versions are densely numbered from 1 and exactly
// one row per chain has CurrentVersion set.
type File struct {
	ID             int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	TenantID       int   `gorm:"primaryKey;autoIncrement:false" json:"tenant_id"`
	Version        int   `gorm:"primaryKey;autoIncrement:false" json:"version"`
	VersionGroup   int   `gorm:"not null;default:1" json:"version_group"`
	CurrentVersion bool  `gorm:"not null;default:false;index" json:"current_version"`

	ParentID      int64     `gorm:"not null;index" json:"parent_id"`
	Title         string    `gorm:"type:varchar(400);not null" json:"title"`
	ContentLength int64     `gorm:"not null;default:0" json:"content_length"`
	Category      int       `gorm:"not null;default:0" json:"category"`
	CreatedBy     string    `gorm:"type:varchar(38)" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	ModifiedBy    string    `gorm:"type:varchar(38)" json:"modified_by"`
	ModifiedAt    time.Time `json:"modified_at"`

	ConvertedType   string          `gorm:"type:varchar(10)" json:"converted_type"`
	Comment         string          `gorm:"type:varchar(255)" json:"comment"`
	Encrypted       bool            `gorm:"not null;default:false" json:"encrypted"`
	Forcesave       ForcesaveType   `gorm:"not null;default:0" json:"forcesave"`
	ThumbnailStatus ThumbnailStatus `gorm:"column:thumb;not null;default:0" json:"thumbnail_status"`
	Changes         string          `gorm:"type:mediumtext" json:"-"`

	// Ancestor snapshot, denormalized at save time so root lookups do not
	// touch the closure table.
	RootID   int64      `gorm:"not null;default:0" json:"root_id"`
	RootType FolderType `gorm:"not null;default:0" json:"root_type"`
}

func (File) TableName() string {
	return "files"
}
