package models

import "time"

type TagType int

const (
	// TagOrigin records the previous parent of a trashed entry so it can be
	// restored.
	TagOrigin TagType = 1
	// TagRoomOrigin records the room an entry came from when it crossed a
	// room boundary.
	TagRoomOrigin TagType = 2
	TagCustom     TagType = 4
)

type Tag struct {
	ID       int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID int     `gorm:"not null;index:idx_tag_tenant_name" json:"tenant_id"`
	Name     string  `gorm:"type:varchar(255);not null;index:idx_tag_tenant_name" json:"name"`
	Owner    string  `gorm:"type:varchar(38)" json:"owner"`
	Type     TagType `gorm:"not null" json:"type"`
}

func (Tag) TableName() string {
	return "tags"
}

type TagLink struct {
	TenantID  int       `gorm:"primaryKey;autoIncrement:false" json:"tenant_id"`
	TagID     int64     `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
	EntryID   string    `gorm:"primaryKey;type:varchar(32)" json:"entry_id"`
	EntryType EntryType `gorm:"primaryKey;autoIncrement:false" json:"entry_type"`
	CreatedBy string    `gorm:"type:varchar(38)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (TagLink) TableName() string {
	return "tag_links"
}
