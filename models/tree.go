package models

// TreeEdge is one row of the folder closure table: folder FolderID has
// ancestor ParentID at distance Level. Level 0 is the mandatory self loop.
// Every folder has exactly one edge per ancestor up to its tenant root, so
// ancestor and descendant queries are single indexed reads, never recursive.
type TreeEdge struct {
	TenantID int   `gorm:"not null;index" json:"tenant_id"`
	FolderID int64 `gorm:"primaryKey;autoIncrement:false" json:"folder_id"`
	ParentID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"parent_id"`
	Level    int   `gorm:"not null" json:"level"`
}

func (TreeEdge) TableName() string {
	return "folder_tree"
}
