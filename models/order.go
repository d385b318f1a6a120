package models

// FileOrder is the optional custom ordering of an entry within its parent
// folder. Consulted only when the parent room has indexing enabled; cleared
// when an entry is trashed.
type FileOrder struct {
	TenantID       int       `gorm:"primaryKey;autoIncrement:false" json:"tenant_id"`
	EntryID        string    `gorm:"primaryKey;type:varchar(32)" json:"entry_id"`
	EntryType      EntryType `gorm:"primaryKey;autoIncrement:false" json:"entry_type"`
	ParentFolderID int64     `gorm:"not null;index" json:"parent_folder_id"`
	Order          int       `gorm:"column:sort_order;not null" json:"order"`
}

func (FileOrder) TableName() string {
	return "file_order"
}
